package portability

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/localstore"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/clock"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	log := zap.NewNop().Sugar()
	st, err := localstore.New(filepath.Join(t.TempDir(), "snapshot.json"), log)
	require.NoError(t, err)
	cfg := &cfgpkg.Config{
		Catalog: cfgpkg.CatalogConfig{PackageDurationDays: 26, SnackAllotment: 26},
		Cache:   cfgpkg.CacheConfig{NameTTL: time.Minute, StatsTTL: time.Minute, ListTTL: time.Minute},
	}
	ca := cache.New()
	clk := clock.NewFrozen(time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC), 3)
	return NewService(st, ca, clk, cfg, log), st
}

// docStore hides the local store's snapshot methods so the service takes
// the per-document path, as it does behind the failover decorator.
type docStore struct {
	store.Store
}

func newGenericTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	svc, st := newTestService(t)
	svc.store = docStore{Store: st}
	return svc, st
}

func TestExport_Shape(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "customers", "0501234567", store.Doc{"name": "Amira"}, false))
	_, err := st.Add(ctx, "packages", store.Doc{"name": "Full Board", "meals": 20})
	require.NoError(t, err)

	data, err := svc.Export(ctx)
	require.NoError(t, err)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Len(t, snap.Customers, 1)
	assert.Len(t, snap.Packages, 1)
	assert.Empty(t, snap.Subscriptions)
	assert.Equal(t, 26, snap.Settings.PackageDuration)
	// September in zero-based month form.
	assert.Equal(t, 8, snap.Settings.CurrentMonth)
	assert.Equal(t, 2026, snap.Settings.CurrentYear)
}

func TestImport_RoundTrip(t *testing.T) {
	src, srcStore := newTestService(t)
	dst, dstStore := newTestService(t)
	ctx := context.Background()

	require.NoError(t, srcStore.Set(ctx, "customers", "0501234567", store.Doc{"name": "Amira"}, false))
	_, err := srcStore.Add(ctx, "subscriptions", store.Doc{"customerId": "0501234567", "status": "active"})
	require.NoError(t, err)
	_, err = srcStore.Add(ctx, "activities", store.Doc{"type": "customer_added"})
	require.NoError(t, err)

	data, err := src.Export(ctx)
	require.NoError(t, err)

	// Pre-existing data in the destination is replaced, not merged.
	require.NoError(t, dstStore.Set(ctx, "customers", "0559876543", store.Doc{"name": "Badr"}, false))

	require.NoError(t, dst.Import(ctx, data))

	size, err := dst.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size["customers"])
	assert.Equal(t, 1, size["subscriptions"])
	assert.Equal(t, 1, size["activities"])
	assert.Zero(t, size["packages"])

	doc, err := dstStore.Get(ctx, "customers", "0501234567")
	require.NoError(t, err)
	assert.Equal(t, "Amira", doc["name"])

	_, err = dstStore.Get(ctx, "customers", "0559876543")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImport_RoundTrip_PerDocumentPath(t *testing.T) {
	src, srcStore := newGenericTestService(t)
	dst, dstStore := newGenericTestService(t)
	ctx := context.Background()

	require.NoError(t, srcStore.Set(ctx, "customers", "0501234567", store.Doc{"name": "Amira"}, false))
	_, err := srcStore.Add(ctx, "packages", store.Doc{"name": "Full Board", "meals": 20})
	require.NoError(t, err)

	data, err := src.Export(ctx)
	require.NoError(t, err)

	require.NoError(t, dstStore.Set(ctx, "customers", "0559876543", store.Doc{"name": "Badr"}, false))

	require.NoError(t, dst.Import(ctx, data))

	size, err := dst.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size["customers"])
	assert.Equal(t, 1, size["packages"])

	_, err = dstStore.Get(ctx, "customers", "0559876543")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImport_MalformedLeavesDataUntouched(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "customers", "0501234567", store.Doc{"name": "Amira"}, false))

	err := svc.Import(ctx, []byte("{not json"))
	assert.ErrorIs(t, err, ErrImport)

	size, err := svc.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size["customers"])
}

func TestImport_DocsWithoutIDGetOne(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	snap := models.Snapshot{
		Activities: []map[string]any{{"type": "customer_added", "description": "Amira"}},
	}
	data, err := json.Marshal(&snap)
	require.NoError(t, err)

	require.NoError(t, svc.Import(ctx, data))

	docs, err := st.Query(ctx, "activities", nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotEmpty(t, docs[0]["id"])
}

func TestSize(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := st.Add(ctx, "dailyRegistrations", store.Doc{"meals": 1})
	require.NoError(t, err)
	_, err = st.Add(ctx, "dailyRegistrations", store.Doc{"meals": 2})
	require.NoError(t, err)

	size, err := svc.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"customers":          0,
		"subscriptions":      0,
		"packages":           0,
		"dailyRegistrations": 2,
		"activities":         0,
	}, size)
}
