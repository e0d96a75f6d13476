// Package activity keeps the append-only log of notable mutations and
// serves the paginated activity feed.
package activity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/clock"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
	"github.com/bigdiet/backend/pkg/types"
)

const collection = "activities"

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

// Record appends an activity. The sortable 24-hour time is fixed here at
// write time; display formats are derived at read time.
func (s *Service) Record(ctx context.Context, typ types.ActivityType, customerID, description string) error {
	act := models.Activity{
		Type:        typ,
		CustomerID:  customerID,
		Description: description,
		Date:        s.clk.Today(),
		Time24:      s.clk.HHMM(),
	}
	doc, err := store.Encode(act)
	if err != nil {
		return err
	}
	if _, err := s.store.Add(ctx, collection, doc); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	s.cache.InvalidateAll(cache.KeyActivities)
	return nil
}

// FeedItem is an activity with its derived display time.
type FeedItem struct {
	models.Activity
	TimeDisplay string `json:"time"`
}

type FeedPage struct {
	Activities []*FeedItem `json:"activities"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
}

// Feed returns notable activities, newest first, paginated. month (1-12)
// and year filter the feed when both are non-zero. Equal timestamps keep
// their relative order.
func (s *Service) Feed(ctx context.Context, month, year, page, limit int) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}

	key := fmt.Sprintf("%s_m%d_y%d_p%d_l%d", cache.KeyActivities, month, year, page, limit)
	if v, ok := s.cache.Get(key); ok {
		if cached, ok := v.(*FeedPage); ok {
			return clonePage(cached), nil
		}
	}

	docs, err := s.store.Query(ctx, collection, nil)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	all, err := store.DecodeAll[models.Activity](docs)
	if err != nil {
		return nil, err
	}

	notable := lo.Filter(all, func(a *models.Activity, _ int) bool {
		return lo.Contains(types.NotableActivityTypes, a.Type)
	})
	if month != 0 && year != 0 {
		notable = lo.Filter(notable, func(a *models.Activity, _ int) bool {
			t, err := time.Parse(time.DateOnly, a.Date)
			return err == nil && int(t.Month()) == month && t.Year() == year
		})
	}

	sort.SliceStable(notable, func(i, j int) bool {
		if notable[i].Date != notable[j].Date {
			return notable[i].Date > notable[j].Date
		}
		return clock.MinutesOfDay(notable[i].Time24) > clock.MinutesOfDay(notable[j].Time24)
	})

	total := len(notable)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]*FeedItem, 0, end-start)
	for _, a := range notable[start:end] {
		items = append(items, &FeedItem{Activity: *a, TimeDisplay: clock.Display12h(a.Time24)})
	}

	result := &FeedPage{
		Activities: items,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}
	s.cache.Set(key, result, s.cfg.Cache.ListTTL)
	return clonePage(result), nil
}

// clonePage copies a cached page so callers cannot mutate the cache's
// entries.
func clonePage(p *FeedPage) *FeedPage {
	cp := *p
	cp.Activities = make([]*FeedItem, len(p.Activities))
	for i, item := range p.Activities {
		c := *item
		cp.Activities[i] = &c
	}
	return &cp
}
