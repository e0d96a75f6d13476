package localstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/store"
)

func newTestStore(t *testing.T) (*Local, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	l, err := New(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	return l, path
}

func TestLocal_CreatesSnapshotFile(t *testing.T) {
	_, path := newTestStore(t)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestLocal_SetGetDelete(t *testing.T) {
	l, _ := newTestStore(t)
	ctx := context.Background()

	err := l.Set(ctx, "customers", "0501234567", store.Doc{"name": "Amira"}, false)
	require.NoError(t, err)

	doc, err := l.Get(ctx, "customers", "0501234567")
	require.NoError(t, err)
	assert.Equal(t, "Amira", doc["name"])
	assert.Equal(t, "0501234567", doc["id"])

	err = l.Delete(ctx, "customers", "0501234567")
	require.NoError(t, err)

	_, err = l.Get(ctx, "customers", "0501234567")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = l.Delete(ctx, "customers", "0501234567")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLocal_SetMergePreservesOtherFields(t *testing.T) {
	l, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, l.Set(ctx, "customers", "c1", store.Doc{"name": "Amira", "status": "new"}, false))
	require.NoError(t, l.Set(ctx, "customers", "c1", store.Doc{"status": "active"}, true))

	doc, err := l.Get(ctx, "customers", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Amira", doc["name"])
	assert.Equal(t, "active", doc["status"])

	// Replace drops fields the new doc does not carry.
	require.NoError(t, l.Set(ctx, "customers", "c1", store.Doc{"name": "Amira"}, false))
	doc, err = l.Get(ctx, "customers", "c1")
	require.NoError(t, err)
	_, hasStatus := doc["status"]
	assert.False(t, hasStatus)
}

func TestLocal_AddAssignsID(t *testing.T) {
	l, _ := newTestStore(t)
	ctx := context.Background()

	id1, err := l.Add(ctx, "activities", store.Doc{"type": "customer_added"})
	require.NoError(t, err)
	id2, err := l.Add(ctx, "activities", store.Doc{"type": "package_added"})
	require.NoError(t, err)
	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)

	doc, err := l.Get(ctx, "activities", id1)
	require.NoError(t, err)
	assert.Equal(t, "customer_added", doc["type"])
}

func TestLocal_UpdateFields(t *testing.T) {
	l, _ := newTestStore(t)
	ctx := context.Background()

	id, err := l.Add(ctx, "subscriptions", store.Doc{"status": "active", "remainingMeals": 20})
	require.NoError(t, err)

	require.NoError(t, l.Update(ctx, "subscriptions", id, map[string]any{"remainingMeals": 15}))

	doc, err := l.Get(ctx, "subscriptions", id)
	require.NoError(t, err)
	assert.Equal(t, "active", doc["status"])
	assert.Equal(t, 15, doc["remainingMeals"])

	err = l.Update(ctx, "subscriptions", "missing", map[string]any{"status": "expired"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLocal_QueryFilters(t *testing.T) {
	l, _ := newTestStore(t)
	ctx := context.Background()

	_, err := l.Add(ctx, "dailyRegistrations", store.Doc{"customerId": "c1", "date": "2026-09-01"})
	require.NoError(t, err)
	_, err = l.Add(ctx, "dailyRegistrations", store.Doc{"customerId": "c2", "date": "2026-09-01"})
	require.NoError(t, err)
	_, err = l.Add(ctx, "dailyRegistrations", store.Doc{"customerId": "c1", "date": "2026-08-31"})
	require.NoError(t, err)

	all, err := l.Query(ctx, "dailyRegistrations", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	today, err := l.Query(ctx, "dailyRegistrations", []store.Filter{store.Eq("date", "2026-09-01")})
	require.NoError(t, err)
	assert.Len(t, today, 2)

	mine, err := l.Query(ctx, "dailyRegistrations", []store.Filter{
		store.Eq("customerId", "c1"),
		store.Eq("date", "2026-09-01"),
	})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestLocal_UnknownCollection(t *testing.T) {
	l, _ := newTestStore(t)
	ctx := context.Background()

	_, err := l.Query(ctx, "payments", nil)
	assert.Error(t, err)
}

func TestLocal_PersistsAcrossReopen(t *testing.T) {
	l, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, l.Set(ctx, "customers", "c1", store.Doc{"name": "Amira"}, false))

	reopened, err := New(path, zap.NewNop().Sugar())
	require.NoError(t, err)

	doc, err := reopened.Get(ctx, "customers", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Amira", doc["name"])
}

func TestLocal_SnapshotIsDetachedCopy(t *testing.T) {
	l, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, l.Set(ctx, "customers", "c1", store.Doc{"name": "Amira"}, false))

	snap, err := l.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Customers, 1)
	assert.Equal(t, 26, snap.Settings.PackageDuration)

	// Mutating the copy must not leak into the store.
	snap.Customers[0]["name"] = "mutated"
	doc, err := l.Get(ctx, "customers", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Amira", doc["name"])
}

func TestLocal_ImportReplacesSnapshot(t *testing.T) {
	l, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, l.Set(ctx, "customers", "old", store.Doc{"name": "Old"}, false))

	err := l.Import(&models.Snapshot{
		Customers:  []map[string]any{{"id": "c1", "name": "Amira"}},
		Activities: []map[string]any{{"type": "customer_added"}},
	})
	require.NoError(t, err)

	_, err = l.Get(ctx, "customers", "old")
	assert.ErrorIs(t, err, store.ErrNotFound)

	doc, err := l.Get(ctx, "customers", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Amira", doc["name"])

	// Documents without an id get one; absent collections become empty.
	acts, err := l.Query(ctx, "activities", nil)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.NotEmpty(t, acts[0]["id"])
	subs, err := l.Query(ctx, "subscriptions", nil)
	require.NoError(t, err)
	assert.Empty(t, subs)

	// The replacement survives a reopen.
	reopened, err := New(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	doc, err = reopened.Get(ctx, "customers", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Amira", doc["name"])
}

func TestLocal_GetReturnsCopy(t *testing.T) {
	l, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, l.Set(ctx, "customers", "c1", store.Doc{"name": "Amira"}, false))

	doc, err := l.Get(ctx, "customers", "c1")
	require.NoError(t, err)
	doc["name"] = "mutated"

	again, err := l.Get(ctx, "customers", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Amira", again["name"])
}
