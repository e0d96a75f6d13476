package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/bigdiet/backend/internal/app/api/handlers"
	mw "github.com/bigdiet/backend/internal/app/api/middleware"
	"github.com/bigdiet/backend/internal/app/service/activity"
	"github.com/bigdiet/backend/internal/app/service/catalog"
	"github.com/bigdiet/backend/internal/app/service/customer"
	"github.com/bigdiet/backend/internal/app/service/dashboard"
	"github.com/bigdiet/backend/internal/app/service/portability"
	"github.com/bigdiet/backend/internal/app/service/registration"
	"github.com/bigdiet/backend/internal/app/service/subscription"
	cfgpkg "github.com/bigdiet/backend/pkg/config"
	metrics "github.com/bigdiet/backend/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeServices struct {
	fx.In

	Customers     *customer.Service
	Catalog       *catalog.Service
	Subscriptions *subscription.Service
	Registrations *registration.Service
	Activities    *activity.Service
	Dashboard     *dashboard.Service
	Portability   *portability.Service
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, svcs routeServices) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())

	handlers.RegisterCustomerRoutes(apiV1, svcs.Customers)
	handlers.RegisterCatalogRoutes(apiV1, svcs.Catalog)
	handlers.RegisterSubscriptionRoutes(apiV1, svcs.Subscriptions)
	handlers.RegisterRegistrationRoutes(apiV1, svcs.Registrations)
	handlers.RegisterActivityRoutes(apiV1, svcs.Activities)
	handlers.RegisterDashboardRoutes(apiV1, svcs.Dashboard)
	handlers.RegisterPortabilityRoutes(apiV1, svcs.Portability)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
