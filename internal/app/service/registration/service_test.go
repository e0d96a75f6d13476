package registration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/app/service/activity"
	"github.com/bigdiet/backend/internal/app/service/catalog"
	"github.com/bigdiet/backend/internal/app/service/customer"
	"github.com/bigdiet/backend/internal/app/service/subscription"
	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/localstore"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/clock"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
	"github.com/bigdiet/backend/pkg/types"
)

type testEnv struct {
	regs      *Service
	subs      *subscription.Service
	customers *customer.Service
	catalog   *catalog.Service
	store     store.Store
}

// Frozen at 2026-09-01 14:05 in UTC+3.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop().Sugar()
	st, err := localstore.New(filepath.Join(t.TempDir(), "snapshot.json"), log)
	require.NoError(t, err)
	cfg := &cfgpkg.Config{
		Catalog: cfgpkg.CatalogConfig{PackageDurationDays: 26, SnackAllotment: 26},
		Cache:   cfgpkg.CacheConfig{NameTTL: time.Minute, StatsTTL: time.Minute, ListTTL: time.Minute},
	}
	ca := cache.New()
	clk := clock.NewFrozen(time.Date(2026, 9, 1, 11, 5, 0, 0, time.UTC), 3)
	acts := activity.NewService(st, ca, clk, cfg, log)
	cat := catalog.NewService(st, ca, cfg, log, acts)
	cust := customer.NewService(st, ca, clk, cfg, log, acts)
	subs := subscription.NewService(st, ca, clk, cfg, log, cat, cust, acts)
	return &testEnv{
		regs:      NewService(st, ca, clk, cfg, log, subs, cust, acts),
		subs:      subs,
		customers: cust,
		catalog:   cat,
		store:     st,
	}
}

// subscribe sets up a customer with an active 20-meal subscription with
// snacks (20 meals / 26 snacks remaining).
func (e *testEnv) subscribe(t *testing.T, phone string) *models.Subscription {
	t.Helper()
	ctx := context.Background()
	_, err := e.customers.AddCustomer(ctx, "Amira", phone)
	require.NoError(t, err)
	pkg, err := e.catalog.AddPackage(ctx, catalog.AddPackageParams{Name: "Full Board", Meals: 20, HasSnacks: true})
	require.NoError(t, err)
	sub, err := e.subs.CreateFromPackage(ctx, phone, pkg.ID, "2026-09-01", "", true)
	require.NoError(t, err)
	return sub
}

func TestAdd_DecrementsCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sub := env.subscribe(t, "0501234567")

	reg, err := env.regs.Add(ctx, "0501234567", 5, 2, "lunch pickup")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", reg.Date)
	assert.Equal(t, "14:05", reg.Time)
	assert.NotEmpty(t, reg.ID)

	got, err := env.subs.GetSubscriptionByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.RemainingMeals)
	assert.Equal(t, 24, got.RemainingSnacks)
	assert.Equal(t, types.SubscriptionStatusActive, got.Status)
}

func TestAdd_MealsExhaustedExpiresSubscriptionAndCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sub := env.subscribe(t, "0501234567")

	_, err := env.regs.Add(ctx, "0501234567", 5, 2, "")
	require.NoError(t, err)
	_, err = env.regs.Add(ctx, "0501234567", 15, 0, "")
	require.NoError(t, err)

	got, err := env.subs.GetSubscriptionByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Zero(t, got.RemainingMeals)
	assert.Equal(t, types.SubscriptionStatusExpired, got.Status)

	cust, err := env.customers.GetCustomerByPhone(ctx, "0501234567")
	require.NoError(t, err)
	assert.Equal(t, types.CustomerStatusExpired, cust.Status)
	assert.Nil(t, cust.CurrentPackage)
}

func TestAdd_CountersClampAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sub := env.subscribe(t, "0501234567")

	_, err := env.regs.Add(ctx, "0501234567", 25, 30, "")
	require.NoError(t, err)

	got, err := env.subs.GetSubscriptionByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Zero(t, got.RemainingMeals)
	assert.Zero(t, got.RemainingSnacks)
	assert.Equal(t, types.SubscriptionStatusExpired, got.Status)
}

func TestAdd_RejectsNegativeConsumption(t *testing.T) {
	env := newTestEnv(t)
	env.subscribe(t, "0501234567")

	_, err := env.regs.Add(context.Background(), "0501234567", -1, 0, "")
	assert.Error(t, err)
	_, err = env.regs.Add(context.Background(), "0501234567", 0, -1, "")
	assert.Error(t, err)
}

func TestAdd_NoActiveSubscriptionStillRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.customers.AddCustomer(ctx, "Amira", "0501234567")
	require.NoError(t, err)

	reg, err := env.regs.Add(ctx, "0501234567", 1, 0, "walk-in")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ID)

	regs, err := env.regs.ListToday(ctx)
	require.NoError(t, err)
	assert.Len(t, regs, 1)
}

func TestDelete_RestoresCountersClampedToTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sub := env.subscribe(t, "0501234567")

	reg, err := env.regs.Add(ctx, "0501234567", 3, 1, "")
	require.NoError(t, err)

	require.NoError(t, env.regs.Delete(ctx, reg.ID))

	got, err := env.subs.GetSubscriptionByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.RemainingMeals)
	assert.Equal(t, 26, got.RemainingSnacks)

	regs, err := env.regs.ListToday(ctx)
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestDelete_MissingRegistration(t *testing.T) {
	env := newTestEnv(t)
	err := env.regs.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListByCustomer_NewestFirstWithLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seed := []store.Doc{
		{"customerId": "0501234567", "date": "2026-08-30", "time": "09:00", "meals": 1},
		{"customerId": "0501234567", "date": "2026-09-01", "time": "08:00", "meals": 1},
		{"customerId": "0501234567", "date": "2026-09-01", "time": "13:30", "meals": 1},
		{"customerId": "0559876543", "date": "2026-09-01", "time": "10:00", "meals": 1},
	}
	for _, d := range seed {
		_, err := env.store.Add(ctx, "dailyRegistrations", d)
		require.NoError(t, err)
	}

	regs, err := env.regs.ListByCustomer(ctx, "0501234567", 2)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "13:30", regs[0].Time)
	assert.Equal(t, "08:00", regs[1].Time)

	all, err := env.regs.ListByCustomer(ctx, "0501234567", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPhrase(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "a meal"},
		{2, "two meals"},
		{3, "3 meals"},
		{15, "15 meals"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, phrase(tt.n, "a meal", "two meals", "meals"))
	}
}
