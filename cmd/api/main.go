package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"solosphere/internal/config"
	"solosphere/internal/db"
	apihttp "solosphere/internal/http"
	"solosphere/internal/metrics"
	"solosphere/internal/repository"
	"solosphere/internal/service"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.AutoMigrate {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()
	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	var (
		recorder       metrics.Recorder = metrics.Nop()
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewCollector(registry)
		metricsHandler = metrics.Handler(registry)
	}

	var (
		revocation  service.RevocationStore
		issueLimit  = service.NewMemoryIssueRateLimiter(cfg.TokenIssuePerMin, cfg.TokenIssueBurst)
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, logout revocation disabled", zap.Error(err))
		} else {
			revocation = service.NewRedisRevocationStore(redisClient)
			issueLimit = service.NewRedisIssueRateLimiter(redisClient, time.Minute, cfg.TokenIssuePerMin)
		}
		cancel()
		defer redisClient.Close()
	}

	jwtSvc := service.NewJWTServiceWithStore(cfg.AccessTokenSecret, cfg.TokenTTL, revocation)

	jobRepo := repository.NewPgJobRepository(pool)
	bidRepo := repository.NewPgBidRepository(pool)
	jobSvc := service.NewJobService(logger, jobRepo)
	bidSvc := service.NewBidService(logger, bidRepo, jobRepo, recorder)

	authHandler := apihttp.NewAuthHandler(logger, jwtSvc, issueLimit, apihttp.NewCookieOptions(cfg.IsProduction()), recorder)
	jobHandler := apihttp.NewJobHandler(logger, jobSvc, recorder)
	bidHandler := apihttp.NewBidHandler(logger, bidSvc, recorder)
	router := apihttp.NewRouter(logger, apihttp.RouterOptions{
		JWT:            jwtSvc,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Metrics:        recorder,
		MetricsHandler: metricsHandler,
	}, authHandler, jobHandler, bidHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("env", cfg.AppEnv),
		zap.Bool("revocation", revocation != nil),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
