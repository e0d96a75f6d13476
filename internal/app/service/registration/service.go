// Package registration records daily meal collections and is the sole
// writer of subscription remaining-meal/snack counters.
package registration

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/app/service/activity"
	"github.com/bigdiet/backend/internal/app/service/customer"
	"github.com/bigdiet/backend/internal/app/service/subscription"
	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/clock"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
	"github.com/bigdiet/backend/pkg/types"
)

const (
	collection              = "dailyRegistrations"
	subscriptionsCollection = "subscriptions"
)

type Service struct {
	store         store.Store
	cache         *cache.Cache
	clk           *clock.Clock
	cfg           *cfgpkg.Config
	log           *zap.SugaredLogger
	subscriptions *subscription.Service
	customers     *customer.Service
	activities    *activity.Service
}

func NewService(st store.Store, ca *cache.Cache, clk *clock.Clock, cfg *cfgpkg.Config, log *zap.SugaredLogger, subs *subscription.Service, cust *customer.Service, acts *activity.Service) *Service {
	return &Service{store: st, cache: ca, clk: clk, cfg: cfg, log: log, subscriptions: subs, customers: cust, activities: acts}
}

// Add records a registration, then decrements the active subscription's
// counters, clamped at zero. When meals hit zero the subscription expires
// and the customer is reset. The registration write and the counter update
// are separate document writes: if the second fails the registration stays
// recorded and the error surfaces to the caller.
func (s *Service) Add(ctx context.Context, customerID string, meals, snacks int, notes string) (*models.DailyRegistration, error) {
	if meals < 0 || snacks < 0 {
		return nil, fmt.Errorf("negative consumption: meals=%d snacks=%d", meals, snacks)
	}

	reg := models.DailyRegistration{
		CustomerID: customerID,
		Date:       s.clk.Today(),
		Time:       s.clk.HHMM(),
		Meals:      meals,
		Snacks:     snacks,
		Notes:      notes,
	}
	doc, err := store.Encode(reg)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Add(ctx, collection, doc)
	if err != nil {
		return nil, fmt.Errorf("add registration: %w", err)
	}
	reg.ID = id

	sub, err := s.subscriptions.ActiveByCustomer(ctx, customerID)
	if err != nil {
		return &reg, fmt.Errorf("resolve active subscription: %w", err)
	}
	if sub != nil {
		remainingMeals := max(0, sub.RemainingMeals-meals)
		remainingSnacks := max(0, sub.RemainingSnacks-snacks)
		fields := map[string]any{
			"remainingMeals":  remainingMeals,
			"remainingSnacks": remainingSnacks,
		}
		if remainingMeals == 0 {
			fields["status"] = string(types.SubscriptionStatusExpired)
		}
		if err := s.store.Update(ctx, subscriptionsCollection, sub.ID, fields); err != nil {
			return &reg, fmt.Errorf("decrement subscription %s: %w", sub.ID, err)
		}
		if remainingMeals == 0 {
			err := s.customers.UpdateCustomer(ctx, customerID, map[string]any{
				"status":         string(types.CustomerStatusExpired),
				"currentPackage": nil,
			})
			if err != nil {
				s.log.Warnw("failed to expire customer", "customer_id", customerID, "err", err)
			}
		}
	}

	desc := s.describe(ctx, customerID, meals, snacks)
	if err := s.activities.Record(ctx, types.ActivityMealRegistered, customerID, desc); err != nil {
		s.log.Warnw("failed to record activity", "err", err)
	}
	s.cache.InvalidateAll()
	return &reg, nil
}

// Delete reverses a registration's effect and removes the record. The
// reversal is applied to whichever subscription is active *now*, which may
// differ from the one debited at registration time if the customer has
// re-subscribed since. Accepted approximation, kept from the product's
// behavior; counters stay clamped to their totals.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.store.Get(ctx, collection, id)
	if err != nil {
		return fmt.Errorf("load registration %s: %w", id, err)
	}
	reg, err := store.Decode[models.DailyRegistration](doc)
	if err != nil {
		return err
	}

	sub, err := s.subscriptions.ActiveByCustomer(ctx, reg.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve active subscription: %w", err)
	}
	if sub != nil {
		err := s.store.Update(ctx, subscriptionsCollection, sub.ID, map[string]any{
			"remainingMeals":  min(sub.TotalMeals, sub.RemainingMeals+reg.Meals),
			"remainingSnacks": min(sub.TotalSnacks, sub.RemainingSnacks+reg.Snacks),
		})
		if err != nil {
			return fmt.Errorf("restore subscription %s: %w", sub.ID, err)
		}
	}

	if err := s.store.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete registration %s: %w", id, err)
	}
	s.cache.InvalidateAll()
	return nil
}

func (s *Service) ListByDate(ctx context.Context, date string) ([]*models.DailyRegistration, error) {
	docs, err := s.store.Query(ctx, collection, []store.Filter{store.Eq("date", date)})
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	return store.DecodeAll[models.DailyRegistration](docs)
}

func (s *Service) ListToday(ctx context.Context) ([]*models.DailyRegistration, error) {
	return s.ListByDate(ctx, s.clk.Today())
}

// ListByCustomer returns the customer's most recent registrations, newest
// first.
func (s *Service) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*models.DailyRegistration, error) {
	docs, err := s.store.Query(ctx, collection, []store.Filter{store.Eq("customerId", customerID)})
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	regs, err := store.DecodeAll[models.DailyRegistration](docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].Date != regs[j].Date {
			return regs[i].Date > regs[j].Date
		}
		return clock.MinutesOfDay(regs[i].Time) > clock.MinutesOfDay(regs[j].Time)
	})
	if limit > 0 && len(regs) > limit {
		regs = regs[:limit]
	}
	return regs, nil
}

// describe phrases a registration in natural language: singular for one,
// dual for two, "{n} meals" from three up.
func (s *Service) describe(ctx context.Context, customerID string, meals, snacks int) string {
	name := s.customers.DisplayName(ctx, customerID)
	desc := ""
	if meals > 0 {
		desc = phrase(meals, "a meal", "two meals", "meals")
	}
	if snacks > 0 {
		if desc != "" {
			desc += " and "
		}
		desc += phrase(snacks, "a snack", "two snacks", "snacks")
	}
	if desc == "" {
		desc = "no meals"
	}
	return fmt.Sprintf("%s - %s", name, desc)
}

func phrase(n int, one, two, plural string) string {
	switch n {
	case 1:
		return one
	case 2:
		return two
	default:
		return fmt.Sprintf("%d %s", n, plural)
	}
}
