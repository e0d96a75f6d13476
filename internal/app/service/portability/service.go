// Package portability exports and imports the full data snapshot: all five
// collections plus settings, in the same JSON shape the local store
// persists.
package portability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/clock"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
)

// ErrImport is returned when the snapshot JSON is malformed. Nothing is
// mutated when it is returned.
var ErrImport = errors.New("malformed snapshot")

// snapshotter is implemented by stores that hold the full snapshot natively
// (the local JSON store). For those, export and import move the snapshot in
// one piece instead of one document at a time.
type snapshotter interface {
	Snapshot() (*models.Snapshot, error)
	Import(snap *models.Snapshot) error
}

type Service struct {
	store store.Store
	cache *cache.Cache
	clk   *clock.Clock
	cfg   *cfgpkg.Config
	log   *zap.SugaredLogger
}

func NewService(st store.Store, ca *cache.Cache, clk *clock.Clock, cfg *cfgpkg.Config, log *zap.SugaredLogger) *Service {
	return &Service{store: st, cache: ca, clk: clk, cfg: cfg, log: log}
}

func (s *Service) settings() models.Settings {
	now := s.clk.Now()
	return models.Settings{
		PackageDuration: s.cfg.Catalog.PackageDurationDays,
		// Zero-based month, matching the persisted snapshot form.
		CurrentMonth: int(now.Month()) - 1,
		CurrentYear:  now.Year(),
	}
}

// Export serializes the full snapshot as indented JSON.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	if ss, ok := s.store.(snapshotter); ok {
		snap, err := ss.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("export snapshot: %w", err)
		}
		snap.Settings = s.settings()
		return json.MarshalIndent(snap, "", "  ")
	}

	snap := models.Snapshot{Settings: s.settings()}
	for _, name := range models.CollectionNames {
		docs, err := s.store.Query(ctx, name, nil)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", name, err)
		}
		col := snap.Collection(name)
		*col = make([]map[string]any, 0, len(docs))
		for _, d := range docs {
			*col = append(*col, d)
		}
	}
	return json.MarshalIndent(&snap, "", "  ")
}

// Import validates and parses the snapshot, then replaces every collection.
// Parse failures leave existing data untouched. Against a snapshot-holding
// store the replacement is a single write; otherwise it is a sequence of
// single-document writes with no cross-call transactionality.
func (s *Service) Import(ctx context.Context, data []byte) error {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrImport, err)
	}

	if ss, ok := s.store.(snapshotter); ok {
		if err := ss.Import(&snap); err != nil {
			return fmt.Errorf("import snapshot: %w", err)
		}
		s.finishImport(&snap)
		return nil
	}

	for _, name := range models.CollectionNames {
		existing, err := s.store.Query(ctx, name, nil)
		if err != nil {
			return fmt.Errorf("import %s: %w", name, err)
		}
		for _, d := range existing {
			if err := s.store.Delete(ctx, name, fmt.Sprint(d["id"])); err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("import %s: %w", name, err)
			}
		}
		for _, d := range *snap.Collection(name) {
			id, hasID := d["id"]
			if !hasID || fmt.Sprint(id) == "" {
				if _, err := s.store.Add(ctx, name, d); err != nil {
					return fmt.Errorf("import %s: %w", name, err)
				}
				continue
			}
			if err := s.store.Set(ctx, name, fmt.Sprint(id), d, false); err != nil {
				return fmt.Errorf("import %s: %w", name, err)
			}
		}
	}

	s.finishImport(&snap)
	return nil
}

func (s *Service) finishImport(snap *models.Snapshot) {
	s.cache.Invalidate("")
	s.log.Infow("snapshot imported",
		"customers", len(snap.Customers),
		"subscriptions", len(snap.Subscriptions),
		"packages", len(snap.Packages),
		"registrations", len(snap.DailyRegistrations),
		"activities", len(snap.Activities),
	)
}

// Size reports per-collection document counts.
func (s *Service) Size(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(models.CollectionNames))
	for _, name := range models.CollectionNames {
		docs, err := s.store.Query(ctx, name, nil)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		out[name] = len(docs)
	}
	return out, nil
}
