// Package catalog manages the meal packages offered for subscription.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/app/service/activity"
	"github.com/bigdiet/backend/internal/models"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/store"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
	"github.com/bigdiet/backend/pkg/types"
)

const collection = "packages"

// ErrPackageNotFound is returned when a referenced package id is absent.
var ErrPackageNotFound = errors.New("package not found")

type Service struct {
	store      store.Store
	cache      *cache.Cache
	cfg        *cfgpkg.Config
	log        *zap.SugaredLogger
	activities *activity.Service
}

func NewService(st store.Store, ca *cache.Cache, cfg *cfgpkg.Config, log *zap.SugaredLogger, acts *activity.Service) *Service {
	return &Service{store: st, cache: ca, cfg: cfg, log: log, activities: acts}
}

type AddPackageParams struct {
	Name        string
	Price       float64
	Meals       int
	HasSnacks   bool
	Description string
}

// AddPackage creates a package with the fixed configured duration.
func (s *Service) AddPackage(ctx context.Context, p AddPackageParams) (*models.Package, error) {
	pkg := models.Package{
		Name:         p.Name,
		Price:        p.Price,
		DurationDays: s.cfg.Catalog.PackageDurationDays,
		Meals:        p.Meals,
		HasSnacks:    p.HasSnacks,
		Description:  p.Description,
		Status:       types.PackageStatusActive,
	}
	doc, err := store.Encode(pkg)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Add(ctx, collection, doc)
	if err != nil {
		return nil, fmt.Errorf("add package: %w", err)
	}
	pkg.ID = id

	if err := s.activities.Record(ctx, types.ActivityPackageAdded, "", pkg.Name); err != nil {
		s.log.Warnw("failed to record activity", "err", err)
	}
	s.cache.InvalidateAll(cache.KeyPackages)
	return &pkg, nil
}

func (s *Service) GetPackages(ctx context.Context) ([]*models.Package, error) {
	if v, ok := s.cache.Get(cache.KeyPackages); ok {
		if cached, ok := v.([]*models.Package); ok {
			return clonePackages(cached), nil
		}
	}
	docs, err := s.store.Query(ctx, collection, nil)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	packages, err := store.DecodeAll[models.Package](docs)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cache.KeyPackages, packages, s.cfg.Cache.ListTTL)
	return clonePackages(packages), nil
}

// clonePackages copies the cached list so callers cannot mutate the cache's
// records.
func clonePackages(in []*models.Package) []*models.Package {
	out := make([]*models.Package, len(in))
	for i, p := range in {
		cp := *p
		out[i] = &cp
	}
	return out
}

func (s *Service) GetPackageByID(ctx context.Context, id string) (*models.Package, error) {
	doc, err := s.store.Get(ctx, collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get package %s: %w", id, err)
	}
	return store.Decode[models.Package](doc)
}

func (s *Service) UpdatePackage(ctx context.Context, id string, fields map[string]any) error {
	if err := s.store.Update(ctx, collection, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPackageNotFound, id)
		}
		return fmt.Errorf("update package %s: %w", id, err)
	}
	if err := s.activities.Record(ctx, types.ActivityPackageUpdated, "", id); err != nil {
		s.log.Warnw("failed to record activity", "err", err)
	}
	s.cache.InvalidateAll(cache.KeyPackages)
	return nil
}

// DeletePackage removes a package. Subscriptions keep their package id; the
// reference is read-only and never cascades.
func (s *Service) DeletePackage(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, collection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPackageNotFound, id)
		}
		return fmt.Errorf("delete package %s: %w", id, err)
	}
	if err := s.activities.Record(ctx, types.ActivityPackageDeleted, "", id); err != nil {
		s.log.Warnw("failed to record activity", "err", err)
	}
	s.cache.InvalidateAll(cache.KeyPackages)
	return nil
}
