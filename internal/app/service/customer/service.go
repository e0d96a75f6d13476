// Package customer manages customer records. The phone number is the
// document id, so registering the same phone twice merges instead of
// duplicating.
package customer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/app/service/activity"
	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/clock"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
	"github.com/bigdiet/backend/pkg/types"
)

const collection = "customers"

// ErrInvalidPhone is returned when a phone number is not exactly 10 digits.
var ErrInvalidPhone = errors.New("invalid phone number")

// ErrInvalidStatus is returned when a status update names an unknown status
// or a move the customer lifecycle does not allow.
var ErrInvalidStatus = errors.New("invalid status transition")

var phoneRe = regexp.MustCompile(`^[0-9]{10}$`)

type Service struct {
	store      store.Store
	cache      *cache.Cache
	clk        *clock.Clock
	cfg        *cfgpkg.Config
	log        *zap.SugaredLogger
	activities *activity.Service
}

func NewService(st store.Store, ca *cache.Cache, clk *clock.Clock, cfg *cfgpkg.Config, log *zap.SugaredLogger, acts *activity.Service) *Service {
	return &Service{store: st, cache: ca, clk: clk, cfg: cfg, log: log, activities: acts}
}

// AddCustomer registers a customer keyed by phone. Returns the new id
// (the phone itself).
func (s *Service) AddCustomer(ctx context.Context, name, phone string) (string, error) {
	if !phoneRe.MatchString(phone) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}

	cust := models.Customer{
		ID:               phone,
		Name:             name,
		Phone:            phone,
		RegistrationDate: s.clk.Today(),
		Status:           types.CustomerStatusNew,
		CurrentPackage:   nil,
		CreatedAt:        s.clk.Now().Format(time.RFC3339),
	}
	doc, err := store.Encode(cust)
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, collection, phone, doc, true); err != nil {
		return "", fmt.Errorf("add customer: %w", err)
	}

	if err := s.activities.Record(ctx, types.ActivityCustomerAdded, phone, name); err != nil {
		s.log.Warnw("failed to record activity", "err", err)
	}
	s.cache.InvalidateAll(cache.KeyCustomers, cache.KeyCustomerName+phone)
	return phone, nil
}

func (s *Service) GetCustomers(ctx context.Context) ([]*models.Customer, error) {
	if v, ok := s.cache.Get(cache.KeyCustomers); ok {
		if cached, ok := v.([]*models.Customer); ok {
			return cloneCustomers(cached), nil
		}
	}
	docs, err := s.store.Query(ctx, collection, nil)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	customers, err := store.DecodeAll[models.Customer](docs)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cache.KeyCustomers, customers, s.cfg.Cache.ListTTL)
	return cloneCustomers(customers), nil
}

// cloneCustomers copies the cached list so a caller mutating a returned
// record cannot pollute the cache for later readers.
func cloneCustomers(in []*models.Customer) []*models.Customer {
	out := make([]*models.Customer, len(in))
	for i, c := range in {
		cp := *c
		out[i] = &cp
	}
	return out
}

// GetCustomerByPhone returns the customer or store.ErrNotFound.
func (s *Service) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	doc, err := s.store.Get(ctx, collection, phone)
	if err != nil {
		return nil, err
	}
	return store.Decode[models.Customer](doc)
}

// UpdateCustomer applies partial field updates (json field names). A status
// field is validated against the lifecycle transitions; a same-status write
// is a no-op and always allowed.
func (s *Service) UpdateCustomer(ctx context.Context, id string, fields map[string]any) error {
	if raw, ok := fields["status"]; ok {
		next := types.CustomerStatus(fmt.Sprint(raw))
		cur, err := s.GetCustomerByPhone(ctx, id)
		if err != nil {
			return err
		}
		if next != cur.Status && !cur.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, cur.Status, next)
		}
	}
	if err := s.store.Update(ctx, collection, id, fields); err != nil {
		return fmt.Errorf("update customer %s: %w", id, err)
	}
	s.cache.InvalidateAll(cache.KeyCustomers, cache.KeyCustomerName+id)
	return nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete customer %s: %w", id, err)
	}
	if err := s.activities.Record(ctx, types.ActivityCustomerDeleted, id, id); err != nil {
		s.log.Warnw("failed to record activity", "err", err)
	}
	s.cache.InvalidateAll(cache.KeyCustomers, cache.KeyCustomerName+id)
	return nil
}

// Search matches customers by case-insensitive name substring or phone
// substring.
func (s *Service) Search(ctx context.Context, query string) ([]*models.Customer, error) {
	customers, err := s.GetCustomers(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	return lo.Filter(customers, func(c *models.Customer, _ int) bool {
		return strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(c.Phone, query)
	}), nil
}

// DisplayName returns the customer's name for activity descriptions.
// Cached with a long TTL; a missing customer yields a placeholder rather
// than an error so logging never blocks a mutation.
func (s *Service) DisplayName(ctx context.Context, id string) string {
	key := cache.KeyCustomerName + id
	if v, ok := s.cache.Get(key); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	doc, err := s.store.Get(ctx, collection, id)
	if err != nil {
		return "unknown customer"
	}
	cust, err := store.Decode[models.Customer](doc)
	if err != nil {
		return "unknown customer"
	}
	s.cache.Set(key, cust.Name, s.cfg.Cache.NameTTL)
	return cust.Name
}
