package customer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/app/service/activity"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/localstore"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/clock"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
	"github.com/bigdiet/backend/pkg/types"
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
	clk := clock.NewFrozen(time.Date(2026, 9, 1, 11, 5, 0, 0, time.UTC), 3)
	acts := activity.NewService(st, ca, clk, cfg, log)
	return NewService(st, ca, clk, cfg, log, acts), st
}

func TestAddCustomer_PhoneValidation(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{name: "valid ten digits", phone: "0501234567"},
		{name: "too short", phone: "12345", wantErr: true},
		{name: "too long", phone: "05012345678", wantErr: true},
		{name: "letters", phone: "05o1234567", wantErr: true},
		{name: "empty", phone: "", wantErr: true},
		{name: "spaces", phone: "050 123456", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			id, err := svc.AddCustomer(context.Background(), "Amira", tt.phone)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.phone, id)
		})
	}
}

func TestAddCustomer_NewRecordDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, "Amira", "0501234567")
	require.NoError(t, err)

	cust, err := svc.GetCustomerByPhone(ctx, "0501234567")
	require.NoError(t, err)
	assert.Equal(t, "Amira", cust.Name)
	assert.Equal(t, types.CustomerStatusNew, cust.Status)
	assert.Nil(t, cust.CurrentPackage)
	assert.Equal(t, "2026-09-01", cust.RegistrationDate)
}

func TestAddCustomer_SamePhoneUpserts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, "Amira", "0501234567")
	require.NoError(t, err)
	_, err = svc.AddCustomer(ctx, "Amira Khalil", "0501234567")
	require.NoError(t, err)

	customers, err := svc.GetCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Amira Khalil", customers[0].Name)
}

func TestGetCustomers_CacheInvalidatedByWrite(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, "Amira", "0501234567")
	require.NoError(t, err)

	customers, err := svc.GetCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)

	// Second write must not be hidden by the cached list.
	_, err = svc.AddCustomer(ctx, "Badr", "0559876543")
	require.NoError(t, err)

	customers, err = svc.GetCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 2)
}

func TestUpdateCustomer_ListReflectsChange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, "Amira", "0501234567")
	require.NoError(t, err)

	// Prime the list cache, then update behind it.
	_, err = svc.GetCustomers(ctx)
	require.NoError(t, err)

	err = svc.UpdateCustomer(ctx, "0501234567", map[string]any{"name": "Amira Khalil"})
	require.NoError(t, err)

	customers, err := svc.GetCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Amira Khalil", customers[0].Name)
}

func TestUpdateCustomer_RefreshesDisplayName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, "Amira", "0501234567")
	require.NoError(t, err)
	assert.Equal(t, "Amira", svc.DisplayName(ctx, "0501234567"))

	err = svc.UpdateCustomer(ctx, "0501234567", map[string]any{"name": "Amira Khalil"})
	require.NoError(t, err)
	assert.Equal(t, "Amira Khalil", svc.DisplayName(ctx, "0501234567"))
}

func TestUpdateCustomer_StatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    types.CustomerStatus
		to      string
		wantErr bool
	}{
		{name: "new to active", from: types.CustomerStatusNew, to: "active"},
		{name: "active to expired", from: types.CustomerStatusActive, to: "expired"},
		{name: "active to new", from: types.CustomerStatusActive, to: "new"},
		{name: "expired to active", from: types.CustomerStatusExpired, to: "active"},
		{name: "expired to new", from: types.CustomerStatusExpired, to: "new"},
		{name: "same status is a no-op", from: types.CustomerStatusActive, to: "active"},
		{name: "new to expired rejected", from: types.CustomerStatusNew, to: "expired", wantErr: true},
		{name: "unknown status rejected", from: types.CustomerStatusActive, to: "actvie", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st := newTestService(t)
			ctx := context.Background()
			_, err := svc.AddCustomer(ctx, "Amira", "0501234567")
			require.NoError(t, err)
			require.NoError(t, st.Update(ctx, "customers", "0501234567", map[string]any{"status": string(tt.from)}))

			err = svc.UpdateCustomer(ctx, "0501234567", map[string]any{"status": tt.to})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			cust, err := svc.GetCustomerByPhone(ctx, "0501234567")
			require.NoError(t, err)
			assert.Equal(t, types.CustomerStatus(tt.to), cust.Status)
		})
	}
}

func TestGetCustomers_CachedRecordsIsolatedFromCaller(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, "Amira", "0501234567")
	require.NoError(t, err)

	first, err := svc.GetCustomers(ctx)
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := svc.GetCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Amira", second[0].Name)
}

func TestDisplayName_MissingCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Equal(t, "unknown customer", svc.DisplayName(context.Background(), "0000000000"))
}

func TestDeleteCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, "Amira", "0501234567")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCustomer(ctx, "0501234567"))

	_, err = svc.GetCustomerByPhone(ctx, "0501234567")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCustomer(ctx, "Amira Khalil", "0501234567")
	require.NoError(t, err)
	_, err = svc.AddCustomer(ctx, "Badr Hassan", "0559876543")
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "name case-insensitive", query: "amira", want: 1},
		{name: "name substring", query: "hass", want: 1},
		{name: "phone prefix", query: "055", want: 1},
		{name: "phone fragment matches both", query: "05", want: 2},
		{name: "no match", query: "zzz", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}
