// Package app wires the application together.
package app

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	gingonic "github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisclient "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	ginadapter "github.com/catometrics/server/internal/adapter/inbound/gin"
	"github.com/catometrics/server/internal/adapter/outbound/postgres"
	redisadapter "github.com/catometrics/server/internal/adapter/outbound/redis"
	"github.com/catometrics/server/internal/domain/admin"
	"github.com/catometrics/server/internal/domain/audit"
	"github.com/catometrics/server/internal/domain/auth"
	"github.com/catometrics/server/internal/domain/authz"
	"github.com/catometrics/server/internal/domain/dashboard"
	"github.com/catometrics/server/internal/domain/team"
	"github.com/catometrics/server/internal/shared/cache"
	"github.com/catometrics/server/internal/shared/config"
	"github.com/catometrics/server/internal/shared/database"
	"github.com/catometrics/server/internal/shared/logger"
	"github.com/catometrics/server/internal/shared/metrics"
	"github.com/catometrics/server/internal/shared/middleware"
)

// App holds the assembled application.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	redis    *redisclient.Client
	recorder *audit.Recorder
	router   *gingonic.Engine

	stopJanitor chan struct{}
}

// New builds the application from configuration.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New("catometrics", registry)

	// Outbound adapters
	users := postgres.NewUserAdapter(db)
	tokens := postgres.NewRefreshTokenAdapter(db)
	teams := postgres.NewTeamAdapter(db)
	members := postgres.NewMemberAdapter(db)
	invitations := postgres.NewInvitationAdapter(db)
	dashboards := postgres.NewDashboardAdapter(db)
	auditRepo := postgres.NewAuditAdapter(db)
	settings := postgres.NewSettingsAdapter(db)
	tx := postgres.NewTxManager(db)
	limiter := redisadapter.NewRateLimiter(redisClient)

	// Audit trail
	recorder := audit.NewRecorder(auditRepo, cfg.Audit.QueueSize, m, log)

	// Auth
	jwtManager, err := auth.NewJWTManager(&auth.JWTConfig{
		Secret:             cfg.Auth.JWTSecret,
		AccessTokenExpiry:  cfg.Auth.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.Auth.RefreshTokenExpiry,
	})
	if err != nil {
		return nil, err
	}
	authService := auth.NewService(users, tokens, limiter, jwtManager, recorder, auth.Config{
		LoginRateLimit:  cfg.Auth.LoginRateLimit,
		LoginRateWindow: cfg.Auth.LoginRateWindow,
	}, m, log)

	// Authorization gate
	gate := authz.NewGate(users, teams, members, m, log)

	// Domain services
	teamService := team.NewService(teams, members, invitations, users, settings, tx, recorder, team.Config{
		InvitationExpiry: cfg.Auth.InvitationExpiry,
		ExternalURL:      cfg.Server.ExternalURL,
	}, log)
	dashboardService := dashboard.NewService(dashboards, settings, recorder, log)
	adminService := admin.NewService(users, teams, dashboards, settings, tokens, recorder, log)

	// HTTP
	requireAuth := middleware.RequireAuth(jwtManager)
	requireSuperAdmin := middleware.RequireSuperAdmin(gate)

	gingonic.SetMode(gingonic.ReleaseMode)
	router := gingonic.New()
	router.Use(
		middleware.Recovery(log),
		middleware.Metrics(m),
		cors.New(cors.Config{
			AllowOrigins:     []string{cfg.Server.ExternalURL},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gingonic.Context) {
		c.JSON(200, gingonic.H{"status": "ok"})
	})
	router.GET("/metrics", gingonic.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	ginadapter.NewAuthHandler(authService, requireAuth).RegisterRoutes(api)
	ginadapter.NewTeamHandler(teamService, gate, requireAuth).RegisterRoutes(api)
	ginadapter.NewDashboardHandler(dashboardService, gate, requireAuth).RegisterRoutes(api)
	ginadapter.NewAdminHandler(adminService, requireAuth, requireSuperAdmin).RegisterRoutes(api)

	a := &App{
		cfg:         cfg,
		logger:      log,
		db:          db,
		redis:       redisClient,
		recorder:    recorder,
		router:      router,
		stopJanitor: make(chan struct{}),
	}
	go a.runTokenJanitor(tokens)
	return a, nil
}

// runTokenJanitor removes expired refresh tokens periodically. Expired
// tokens are already unusable; this only keeps the table small.
func (a *App) runTokenJanitor(tokens *postgres.RefreshTokenAdapter) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopJanitor:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := tokens.DeleteExpired(ctx, time.Now()); err != nil {
				a.logger.Warn("expired token cleanup failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// Router returns the HTTP handler.
func (a *App) Router() *gingonic.Engine {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Stop drains the audit queue and releases connections.
func (a *App) Stop(ctx context.Context) {
	close(a.stopJanitor)
	if err := a.recorder.Close(ctx); err != nil {
		a.logger.Warn("audit recorder drain timed out", zap.Error(err))
	}
	if err := cache.Close(a.redis); err != nil {
		a.logger.Warn("redis close failed", zap.Error(err))
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("database close failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}
