package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/api"
	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/auth"
	"github.com/hackgods/clinic-booking/internal/config"
	"github.com/hackgods/clinic-booking/internal/db"
	"github.com/hackgods/clinic-booking/internal/logging"
	"github.com/hackgods/clinic-booking/internal/record"
	redisclient "github.com/hackgods/clinic-booking/internal/redis"
	"github.com/hackgods/clinic-booking/internal/user"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("api-server", "prod", "info")
		bootLogger.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New("api-server", cfg.Env, cfg.LogLevel)
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	if err := db.Migrate(rootCtx, pgPool, logger); err != nil {
		logger.Fatal().Err(err).Msg("migration error")
	}

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(rootCtx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	handler := buildRouter(cfg, pgPool, rdb, logger)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return rootCtx },
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Fatal().Err(err).Msg("http server error")
		}
	case <-rootCtx.Done():
	}

	logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func buildRouter(cfg config.Config, pgPool *pgxpool.Pool, rdb *redis.Client, logger zerolog.Logger) http.Handler {
	userRepo := user.NewPgRepository(pgPool)
	apptRepo := appointment.NewPgRepository(pgPool)
	recordRepo := record.NewPgRepository(pgPool)

	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	users := user.NewService(userRepo, auth.BcryptHasher{}, logger)
	appointments := appointment.NewService(apptRepo, userRepo, locker, cfg, logger)
	records := record.NewService(recordRepo, userRepo, apptRepo, logger)

	health := api.NewHealthHandler(cfg.Env, version,
		api.Dependency{Name: "postgres", Critical: true, Ping: pgPool.Ping},
		api.Dependency{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}},
	)

	return api.NewRouter(api.RouterConfig{
		Users:        users,
		Appointments: appointments,
		Records:      records,
		Tokens:       tokens,
		Health:       health,
		Logger:       logger,
	})
}
