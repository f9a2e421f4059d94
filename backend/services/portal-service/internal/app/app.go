package app

import (
	"context"
	"database/sql"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "nmsportal/backend/libs/db"
	"nmsportal/backend/libs/derive"
	libredis "nmsportal/backend/libs/redis"
	"nmsportal/backend/services/portal-service/internal/config"
	httpserver "nmsportal/backend/services/portal-service/internal/http"
	"nmsportal/backend/services/portal-service/internal/http/handlers"
	"nmsportal/backend/services/portal-service/internal/http/middleware"
	"nmsportal/backend/services/portal-service/internal/password"
	redisstore "nmsportal/backend/services/portal-service/internal/redis"
	"nmsportal/backend/services/portal-service/internal/repository"
	"nmsportal/backend/services/portal-service/internal/service"
	"nmsportal/backend/services/portal-service/internal/sessions"
	"nmsportal/backend/services/portal-service/internal/ws"
)

// App wires portal service dependencies.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	redis  *goredis.Client
	logger *zap.Logger
}

// New constructs application components. Redis is optional; Postgres is not.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	summaryRepo := repository.NewSummaryRepository(sqlDB)
	if err := summaryRepo.EnsureSchema(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	a := &App{db: sqlDB, logger: logger}

	var cache service.SummaryCache
	if cfg.Redis.Addr != "" {
		client, err := libredis.NewRedisClient(libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("redis unavailable, summary cache disabled", zap.Error(err))
		} else {
			a.redis = client
			cache = redisstore.NewSummaryStore(client, cfg.SummaryTTL())
		}
	}

	store := sessions.NewStore(cfg.Data.Dir)
	portalService := service.NewPortalService(store, summaryRepo, cache, cfg.WorkerCount(), logger)
	tokenService := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	hasher := password.NewBcryptHasher(0)
	for _, u := range cfg.Users {
		if hasher.Weak(u.PasswordHash) {
			logger.Warn("user password hash is below the default bcrypt cost", zap.String("username", u.Username))
		}
	}
	authService := service.NewAuthService(cfg.Users, hasher, tokenService, logger)

	deriver := ws.DeriverFunc(func(ctx context.Context, name string, units derive.UnitSystem) (*derive.Session, error) {
		session, _, err := portalService.Derive(ctx, name, units)
		return session, err
	})

	routes := httpserver.RouterDeps{
		Login:    handlers.NewLoginHandler(authService, logger),
		Me:       handlers.NewMeHandler(),
		Health:   handlers.NewHealthHandler(),
		Sessions: handlers.NewSessionsHandlers(portalService, cfg.DefaultUnits(), logger),
		Replay:   ws.NewReplayHandler(deriver, cfg.DefaultUnits(), cfg.Replay.WriteTimeout, cfg.Replay.MaxGap, logger),
	}

	router := httpserver.NewRouter(routes, middleware.AuthMiddleware(tokenService))
	a.server = httpserver.NewServer(cfg.HTTPAddress(), router, logger, httpserver.RequestLogger(logger))

	logger.Info("portal configured",
		zap.String("data_dir", cfg.Data.Dir),
		zap.String("default_units", string(cfg.DefaultUnits())),
		zap.Bool("cache", cache != nil),
		zap.Int("users", len(cfg.Users)),
	)
	return a, nil
}

// Run starts serving HTTP requests.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
