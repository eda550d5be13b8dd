package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/newswirehq/newswire-backend/api/controllers"
	"github.com/newswirehq/newswire-backend/api/routes"
	"github.com/newswirehq/newswire-backend/internal/checkpoint"
	"github.com/newswirehq/newswire-backend/internal/media"
	"github.com/newswirehq/newswire-backend/internal/session"
	"github.com/newswirehq/newswire-backend/internal/users"
	"github.com/newswirehq/newswire-backend/pkg/config"
	"github.com/newswirehq/newswire-backend/pkg/db"
	"github.com/newswirehq/newswire-backend/pkg/db/models"
	"github.com/newswirehq/newswire-backend/pkg/logger"
	"github.com/newswirehq/newswire-backend/pkg/metrics"
	"github.com/newswirehq/newswire-backend/pkg/redis"
	"github.com/newswirehq/newswire-backend/pkg/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if cfg.App.AutoMigrate {
		if err := dbClient.DB().WithContext(ctx).AutoMigrate(&models.User{}); err != nil {
			logg.Error(ctx, "failed to run migrations", err)
			os.Exit(1)
		}
		logg.Info(ctx, "schema migrated")
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	s3Client, err := s3.NewClient(ctx, cfg.S3, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	usersRepo := users.NewRepo(dbClient)
	usersService := users.NewService(usersRepo, cfg.Password, logg)
	sessionService := session.NewService(usersRepo, cfg.Password, logg)
	checkpointStore := checkpoint.NewStore(redisClient, cfg.Redis.ReadTimeout, logg)
	mediaService := media.NewService(s3Client, cfg.Media, logg)

	handler := routes.NewRouter(cfg, logg, routes.Deps{
		Users:      usersService,
		Session:    sessionService,
		Checkpoint: checkpointStore,
		Media:      mediaService,
		Pingers: map[string]controllers.Pinger{
			"postgres": dbClient,
			"redis":    redisClient,
			"s3":       s3Client,
		},
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok && err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			_ = closeAll(dbClient, redisClient)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "error draining server", err)
	}

	if err := closeAll(dbClient, redisClient); err != nil {
		logg.Error(ctx, "error closing dependencies", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server stopped")
}

func closeAll(closers ...interface{ Close() error }) error {
	var err error
	for _, c := range closers {
		if c == nil {
			continue
		}
		err = multierr.Append(err, c.Close())
	}
	return err
}
