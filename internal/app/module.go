package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/bigdiet/backend/internal/app/api/server"
	"github.com/bigdiet/backend/internal/app/service/activity"
	"github.com/bigdiet/backend/internal/app/service/catalog"
	"github.com/bigdiet/backend/internal/app/service/customer"
	"github.com/bigdiet/backend/internal/app/service/dashboard"
	"github.com/bigdiet/backend/internal/app/service/portability"
	"github.com/bigdiet/backend/internal/app/service/registration"
	"github.com/bigdiet/backend/internal/app/service/subscription"
	"github.com/bigdiet/backend/internal/platform/cache"
	"github.com/bigdiet/backend/internal/platform/storage"
	"github.com/bigdiet/backend/pkg/clock"
	"github.com/bigdiet/backend/pkg/config"
	"github.com/bigdiet/backend/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	clock.Module,
	storage.Module,
	cache.Module,
	server.Module,
	customer.Module,
	catalog.Module,
	subscription.Module,
	registration.Module,
	activity.Module,
	dashboard.Module,
	portability.Module,
)
