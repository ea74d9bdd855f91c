package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/climaxott/ledger/docs"
	"github.com/climaxott/ledger/internal/app/api/handlers"
	mw "github.com/climaxott/ledger/internal/app/api/middleware"
	"github.com/climaxott/ledger/internal/app/service/catalog"
	"github.com/climaxott/ledger/internal/app/service/ledger"
	"github.com/climaxott/ledger/internal/app/service/notification"
	"github.com/climaxott/ledger/internal/app/service/settings"
	"github.com/climaxott/ledger/internal/app/service/statistics"
	usersvc "github.com/climaxott/ledger/internal/app/service/user"
	"github.com/climaxott/ledger/internal/platform/gateway/instamojo"
	"github.com/climaxott/ledger/internal/platform/gateway/phonepe"
	cfgpkg "github.com/climaxott/ledger/pkg/config"
	metrics "github.com/climaxott/ledger/pkg/metrics"
	"github.com/climaxott/ledger/pkg/types"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Engine       *gin.Engine
	Log          *zap.SugaredLogger
	Cfg          *cfgpkg.Config
	Ledger       ledger.Manager
	Catalog      *catalog.Service
	Users        *usersvc.Service
	Settings     *settings.Service
	Stats        *statistics.Service
	NotifHandler *notification.NotificationHandler
	Instamojo    *instamojo.Client
	PhonePe      *phonepe.Client
}

func registerRoutes(d routeDeps) {
	r, log, cfg := d.Engine, d.Log, d.Cfg

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
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())

	handlers.RegisterAuthRoutes(api.Group("/auth"), d.Users, cfg, log)

	authed := func(g *gin.RouterGroup) gin.IRouter {
		g.Use(mw.JwtAuthMiddleware(cfg))
		return g
	}
	adminOnly := func(g *gin.RouterGroup) gin.IRouter {
		g.Use(mw.JwtAuthMiddleware(cfg), mw.RequireRole(types.RoleAdmin))
		return g
	}

	handlers.RegisterPaymentRoutes(
		authed(api.Group("/payments")),
		adminOnly(api.Group("/payments")),
		d.Ledger, log)
	handlers.RegisterContentRoutes(
		api.Group("/content"),
		adminOnly(api.Group("/content")),
		d.Catalog, d.Ledger, log)
	handlers.RegisterSettingsRoutes(
		api.Group("/settings"),
		adminOnly(api.Group("/settings")),
		d.Settings, log)

	// Gateway callbacks authenticate via signatures, not JWTs
	handlers.RegisterGatewayRoutes(api.Group("/gateways"),
		d.Instamojo, d.PhonePe, d.Ledger, d.NotifHandler, cfg, log)

	handlers.RegisterAdminRoutes(adminOnly(api.Group("/admin")), d.Ledger, d.Stats, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
