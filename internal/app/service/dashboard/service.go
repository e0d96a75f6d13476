// Package dashboard computes the landing-page aggregates. The four
// collection reads are fanned out in parallel and joined; results are
// cached briefly and invalidated by every write path.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/clock"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
	"github.com/bigdiet/backend/pkg/types"
)

type Stats struct {
	TotalCustomers      int `json:"totalCustomers"`
	ActiveSubscriptions int `json:"activeSubscriptions"`
	ActivePackages      int `json:"totalPackages"`
	TodayRegistrations  int `json:"todayRegistrations"`
	TodayMealsCollected int `json:"todayMealsCollected"`
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

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	if v, ok := s.cache.Get(cache.KeyDashboardStats); ok {
		if cached, ok := v.(*Stats); ok {
			cp := *cached
			return &cp, nil
		}
	}

	today := s.clk.Today()

	type load func(context.Context) (*lo.Entry[string, int], error)
	loads := []load{
		s.countCustomers,
		func(ctx context.Context) (*lo.Entry[string, int], error) { return s.countActiveSubscriptions(ctx, today) },
		s.countActivePackages,
		func(ctx context.Context) (*lo.Entry[string, int], error) { return s.countTodayRegistrations(ctx, today) },
		func(ctx context.Context) (*lo.Entry[string, int], error) { return s.sumTodayMeals(ctx, today) },
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(loads))
	resChan := make(chan *lo.Entry[string, int], len(loads))

	for _, l := range loads {
		wg.Add(1)
		go func(l load) {
			defer wg.Done()
			entry, err := l(ctx)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- entry
		}(l)
	}

	// Join after every loader finishes, then drain: a select over both
	// channels could consume a ready error case and drop a result.
	wg.Wait()
	close(errChan)
	close(resChan)

	if err := <-errChan; err != nil {
		return nil, err
	}
	results := make(map[string]int, len(loads))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}

	stats := &Stats{
		TotalCustomers:      results["customers"],
		ActiveSubscriptions: results["active_subscriptions"],
		ActivePackages:      results["active_packages"],
		TodayRegistrations:  results["today_registrations"],
		TodayMealsCollected: results["today_meals"],
	}
	// Cache a private copy; callers get their own to mutate freely.
	cp := *stats
	s.cache.Set(cache.KeyDashboardStats, &cp, s.cfg.Cache.StatsTTL)
	return stats, nil
}

func (s *Service) countCustomers(ctx context.Context) (*lo.Entry[string, int], error) {
	docs, err := s.store.Query(ctx, "customers", nil)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	return &lo.Entry[string, int]{Key: "customers", Value: len(docs)}, nil
}

func (s *Service) countActiveSubscriptions(ctx context.Context, today string) (*lo.Entry[string, int], error) {
	docs, err := s.store.Query(ctx, "subscriptions", []store.Filter{
		store.Eq("status", string(types.SubscriptionStatusActive)),
	})
	if err != nil {
		return nil, fmt.Errorf("count subscriptions: %w", err)
	}
	subs, err := store.DecodeAll[models.Subscription](docs)
	if err != nil {
		return nil, err
	}
	n := lo.CountBy(subs, func(sub *models.Subscription) bool {
		return sub.ActiveOn(today)
	})
	return &lo.Entry[string, int]{Key: "active_subscriptions", Value: n}, nil
}

func (s *Service) countActivePackages(ctx context.Context) (*lo.Entry[string, int], error) {
	docs, err := s.store.Query(ctx, "packages", []store.Filter{
		store.Eq("status", string(types.PackageStatusActive)),
	})
	if err != nil {
		return nil, fmt.Errorf("count packages: %w", err)
	}
	return &lo.Entry[string, int]{Key: "active_packages", Value: len(docs)}, nil
}

func (s *Service) countTodayRegistrations(ctx context.Context, today string) (*lo.Entry[string, int], error) {
	docs, err := s.store.Query(ctx, "dailyRegistrations", []store.Filter{store.Eq("date", today)})
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	return &lo.Entry[string, int]{Key: "today_registrations", Value: len(docs)}, nil
}

func (s *Service) sumTodayMeals(ctx context.Context, today string) (*lo.Entry[string, int], error) {
	docs, err := s.store.Query(ctx, "dailyRegistrations", []store.Filter{store.Eq("date", today)})
	if err != nil {
		return nil, fmt.Errorf("sum meals: %w", err)
	}
	regs, err := store.DecodeAll[models.DailyRegistration](docs)
	if err != nil {
		return nil, err
	}
	total := lo.SumBy(regs, func(r *models.DailyRegistration) int { return r.Meals })
	return &lo.Entry[string, int]{Key: "today_meals", Value: total}, nil
}
