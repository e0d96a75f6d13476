// Package subscription manages subscription lifecycle: creation from a
// package, active-subscription resolution, and the expiry sweep. The
// remaining meal/snack counters on a subscription are owned by the
// registration service and are not touched here.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/app/service/activity"
	"github.com/bigdiet/backend/internal/app/service/catalog"
	"github.com/bigdiet/backend/internal/app/service/customer"
	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/clock"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
	"github.com/bigdiet/backend/pkg/types"
)

const collection = "subscriptions"

type Service struct {
	store      store.Store
	cache      *cache.Cache
	clk        *clock.Clock
	cfg        *cfgpkg.Config
	log        *zap.SugaredLogger
	catalog    *catalog.Service
	customers  *customer.Service
	activities *activity.Service
}

func NewService(st store.Store, ca *cache.Cache, clk *clock.Clock, cfg *cfgpkg.Config, log *zap.SugaredLogger, cat *catalog.Service, cust *customer.Service, acts *activity.Service) *Service {
	return &Service{store: st, cache: ca, clk: clk, cfg: cfg, log: log, catalog: cat, customers: cust, activities: acts}
}

// CreateFromPackage subscribes a customer to a package. Meal totals come
// from the package; the snack allotment is a fixed business constant
// independent of the meal count. An empty endDate is derived from the
// package duration.
func (s *Service) CreateFromPackage(ctx context.Context, customerID, packageID, startDate, endDate string, hasSnacks bool) (*models.Subscription, error) {
	pkg, err := s.catalog.GetPackageByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	if endDate == "" {
		endDate, err = clock.AddDays(startDate, pkg.DurationDays)
		if err != nil {
			return nil, err
		}
	}

	totalSnacks := 0
	if hasSnacks {
		totalSnacks = s.cfg.Catalog.SnackAllotment
	}

	sub := models.Subscription{
		CustomerID:      customerID,
		PackageID:       packageID,
		StartDate:       startDate,
		EndDate:         endDate,
		TotalMeals:      pkg.Meals,
		TotalSnacks:     totalSnacks,
		RemainingMeals:  pkg.Meals,
		RemainingSnacks: totalSnacks,
		HasSnacks:       hasSnacks,
		Status:          types.SubscriptionStatusActive,
	}
	doc, err := store.Encode(sub)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Add(ctx, collection, doc)
	if err != nil {
		return nil, fmt.Errorf("add subscription: %w", err)
	}
	sub.ID = id

	if err := s.customers.UpdateCustomer(ctx, customerID, map[string]any{
		"status":         string(types.CustomerStatusActive),
		"currentPackage": pkg.Name,
	}); err != nil {
		s.log.Warnw("failed to update customer after subscribe", "customer_id", customerID, "err", err)
	}

	desc := fmt.Sprintf("%s - %s", s.customers.DisplayName(ctx, customerID), pkg.Name)
	if err := s.activities.Record(ctx, types.ActivitySubscriptionAdded, customerID, desc); err != nil {
		s.log.Warnw("failed to record activity", "err", err)
	}
	s.cache.InvalidateAll()
	return &sub, nil
}

// ActiveByCustomer resolves the customer's current subscription: status
// active, not past its end date, most recent start date winning ties.
// Returns nil when none qualify. Never cached: registration correctness
// depends on a fresh read.
func (s *Service) ActiveByCustomer(ctx context.Context, customerID string) (*models.Subscription, error) {
	docs, err := s.store.Query(ctx, collection, []store.Filter{store.Eq("customerId", customerID)})
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	subs, err := store.DecodeAll[models.Subscription](docs)
	if err != nil {
		return nil, err
	}

	today := s.clk.Today()
	candidates := lo.Filter(subs, func(sub *models.Subscription, _ int) bool {
		return sub.ActiveOn(today)
	})
	if len(candidates) == 0 {
		return nil, nil
	}
	// ISO dates compare correctly as strings.
	return lo.MaxBy(candidates, func(a, b *models.Subscription) bool {
		return a.StartDate > b.StartDate
	}), nil
}

func (s *Service) GetSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	docs, err := s.store.Query(ctx, collection, nil)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	return store.DecodeAll[models.Subscription](docs)
}

func (s *Service) GetSubscriptionByID(ctx context.Context, id string) (*models.Subscription, error) {
	doc, err := s.store.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return store.Decode[models.Subscription](doc)
}

// UpdateSubscription applies partial field updates (json field names).
// Counter fields are rejected; only the registration flow may move them.
func (s *Service) UpdateSubscription(ctx context.Context, id string, fields map[string]any) error {
	for _, counter := range []string{"remainingMeals", "remainingSnacks"} {
		if _, ok := fields[counter]; ok {
			return fmt.Errorf("field %s is owned by the registration flow", counter)
		}
	}
	sub, err := s.GetSubscriptionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, collection, id, fields); err != nil {
		return fmt.Errorf("update subscription %s: %w", id, err)
	}
	desc := s.customers.DisplayName(ctx, sub.CustomerID)
	if err := s.activities.Record(ctx, types.ActivitySubscriptionUpdated, sub.CustomerID, desc); err != nil {
		s.log.Warnw("failed to record activity", "err", err)
	}
	s.cache.InvalidateAll()
	return nil
}

// DeleteSubscription removes a subscription and resets its customer back to
// a fresh state.
func (s *Service) DeleteSubscription(ctx context.Context, id string) error {
	sub, err := s.GetSubscriptionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.customers.UpdateCustomer(ctx, sub.CustomerID, map[string]any{
		"status":         string(types.CustomerStatusNew),
		"currentPackage": nil,
	}); err != nil {
		s.log.Warnw("failed to reset customer after unsubscribe", "customer_id", sub.CustomerID, "err", err)
	}
	if err := s.store.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete subscription %s: %w", id, err)
	}
	desc := s.customers.DisplayName(ctx, sub.CustomerID)
	if err := s.activities.Record(ctx, types.ActivitySubscriptionDeleted, sub.CustomerID, desc); err != nil {
		s.log.Warnw("failed to record activity", "err", err)
	}
	s.cache.InvalidateAll()
	return nil
}

// CheckAndExpire marks every active subscription whose end date has passed
// as expired, regardless of remaining counters. Idempotent; returns the
// number of subscriptions expired by this sweep.
func (s *Service) CheckAndExpire(ctx context.Context) (int, error) {
	docs, err := s.store.Query(ctx, collection, []store.Filter{
		store.Eq("status", string(types.SubscriptionStatusActive)),
	})
	if err != nil {
		return 0, fmt.Errorf("query active subscriptions: %w", err)
	}
	subs, err := store.DecodeAll[models.Subscription](docs)
	if err != nil {
		return 0, err
	}

	today := s.clk.Today()
	expired := 0
	for _, sub := range subs {
		if sub.EndDate == "" || sub.EndDate >= today {
			continue
		}
		err := s.store.Update(ctx, collection, sub.ID, map[string]any{
			"status": string(types.SubscriptionStatusExpired),
		})
		if err != nil {
			return expired, fmt.Errorf("expire subscription %s: %w", sub.ID, err)
		}
		expired++
	}
	if expired > 0 {
		s.log.Infow("expired subscriptions by date", "count", expired)
		s.cache.InvalidateAll()
	}
	return expired, nil
}

// Search matches subscriptions by customer or package name substring.
func (s *Service) Search(ctx context.Context, query string) ([]*models.Subscription, error) {
	subs, err := s.GetSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	packages, err := s.catalog.GetPackages(ctx)
	if err != nil {
		return nil, err
	}
	packageNames := make(map[string]string, len(packages))
	for _, p := range packages {
		packageNames[p.ID] = strings.ToLower(p.Name)
	}

	q := strings.ToLower(query)
	return lo.Filter(subs, func(sub *models.Subscription, _ int) bool {
		if strings.Contains(strings.ToLower(s.customers.DisplayName(ctx, sub.CustomerID)), q) {
			return true
		}
		return strings.Contains(packageNames[sub.PackageID], q)
	}), nil
}

// IsNotFound reports whether err means the subscription id does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
