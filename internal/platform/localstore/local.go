// Package localstore persists all collections in a single JSON snapshot
// file, the local equivalent of the remote document database. The whole
// snapshot is held in memory and rewritten on every mutation.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/tool"
)

type Local struct {
	path string
	log  *zap.SugaredLogger

	mu   sync.RWMutex
	snap *models.Snapshot
}

// New opens (or creates) the snapshot file at path.
func New(path string, log *zap.SugaredLogger) (*Local, error) {
	l := &Local{path: path, log: log}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Local) load() error {
	b, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		now := time.Now()
		l.snap = &models.Snapshot{
			Customers:          []map[string]any{},
			Subscriptions:      []map[string]any{},
			Packages:           []map[string]any{},
			DailyRegistrations: []map[string]any{},
			Activities:         []map[string]any{},
			Settings: models.Settings{
				PackageDuration: 26,
				CurrentMonth:    int(now.Month()) - 1,
				CurrentYear:     now.Year(),
			},
		}
		return l.persistLocked()
	}
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", l.path, err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("parse snapshot %s: %w", l.path, err)
	}
	l.snap = &snap
	return nil
}

// persistLocked writes the snapshot to disk. Caller holds the write lock
// (or is still in single-threaded construction).
func (l *Local) persistLocked() error {
	b, err := json.MarshalIndent(l.snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func cloneDoc(d store.Doc) store.Doc {
	out := make(store.Doc, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (l *Local) collection(name string) (*[]map[string]any, error) {
	col := l.snap.Collection(name)
	if col == nil {
		return nil, fmt.Errorf("unknown collection %q", name)
	}
	return col, nil
}

func (l *Local) Get(ctx context.Context, collection, id string) (store.Doc, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	col, err := l.collection(collection)
	if err != nil {
		return nil, err
	}
	for _, d := range *col {
		if fmt.Sprint(d["id"]) == id {
			return cloneDoc(d), nil
		}
	}
	return nil, store.ErrNotFound
}

func (l *Local) Set(ctx context.Context, collection, id string, doc store.Doc, merge bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	col, err := l.collection(collection)
	if err != nil {
		return err
	}
	doc = cloneDoc(doc)
	doc["id"] = id
	for i, d := range *col {
		if fmt.Sprint(d["id"]) != id {
			continue
		}
		if merge {
			merged := cloneDoc(d)
			for k, v := range doc {
				merged[k] = v
			}
			(*col)[i] = merged
		} else {
			(*col)[i] = doc
		}
		return l.persistLocked()
	}
	*col = append(*col, doc)
	return l.persistLocked()
}

func (l *Local) Add(ctx context.Context, collection string, doc store.Doc) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	col, err := l.collection(collection)
	if err != nil {
		return "", err
	}
	id := tool.GenerateUUIDV7()
	doc = cloneDoc(doc)
	doc["id"] = id
	*col = append(*col, doc)
	if err := l.persistLocked(); err != nil {
		return "", err
	}
	return id, nil
}

func (l *Local) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	col, err := l.collection(collection)
	if err != nil {
		return err
	}
	for i, d := range *col {
		if fmt.Sprint(d["id"]) != id {
			continue
		}
		merged := cloneDoc(d)
		for k, v := range fields {
			merged[k] = v
		}
		(*col)[i] = merged
		return l.persistLocked()
	}
	return store.ErrNotFound
}

func (l *Local) Delete(ctx context.Context, collection, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	col, err := l.collection(collection)
	if err != nil {
		return err
	}
	kept := (*col)[:0]
	found := false
	for _, d := range *col {
		if fmt.Sprint(d["id"]) == id {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return store.ErrNotFound
	}
	*col = kept
	return l.persistLocked()
}

func (l *Local) Query(ctx context.Context, collection string, filters []store.Filter) ([]store.Doc, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	col, err := l.collection(collection)
	if err != nil {
		return nil, err
	}
	var out []store.Doc
	for _, d := range *col {
		if store.Matches(d, filters) {
			out = append(out, cloneDoc(d))
		}
	}
	return out, nil
}

// Snapshot returns a deep copy of the current snapshot, detached from the
// store's own state.
func (l *Local) Snapshot() (*models.Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, err := json.Marshal(l.snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	var cp models.Snapshot
	if err := json.Unmarshal(b, &cp); err != nil {
		return nil, fmt.Errorf("copy snapshot: %w", err)
	}
	return &cp, nil
}

// Import replaces the whole snapshot in one write. Documents without an id
// get one assigned, missing collections become empty. The caller validates
// the JSON before handing it over; nothing is mutated if persistence fails.
func (l *Local) Import(snap *models.Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range models.CollectionNames {
		col := snap.Collection(name)
		if *col == nil {
			*col = []map[string]any{}
		}
		for _, d := range *col {
			if id, ok := d["id"]; !ok || fmt.Sprint(id) == "" {
				d["id"] = tool.GenerateUUIDV7()
			}
		}
	}
	prev := l.snap
	l.snap = snap
	if err := l.persistLocked(); err != nil {
		l.snap = prev
		return err
	}
	return nil
}

var _ store.Store = (*Local)(nil)
