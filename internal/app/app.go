package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/MrSnakeDoc/marks/internal/config"
	"github.com/MrSnakeDoc/marks/internal/httpserver"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/meta"
	"github.com/MrSnakeDoc/marks/internal/redis"
	"github.com/MrSnakeDoc/marks/internal/scheduler"
	"github.com/MrSnakeDoc/marks/internal/service"
	"github.com/MrSnakeDoc/marks/internal/store/postgres"
	"github.com/MrSnakeDoc/marks/internal/store/rediscache"
	"github.com/MrSnakeDoc/marks/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	db          *gorm.DB
	sweeper     *scheduler.Sweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	// Open the database and run migrations
	db, err := postgres.Open(cfg.DatabaseDSN)
	if err != nil {
		loggerClient.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Database initialized successfully")

	// Repositories
	bookmarkRepo := postgres.NewBookmarkRepo(db)
	userRepo := postgres.NewUserRepo(db)
	tokenRepo := postgres.NewTokenRepo(db)

	// Listing cache and page metadata extractor
	listingCache := rediscache.New(redisClient, cfg.CacheTTL)
	extractor := meta.New(cfg.FetchTimeout)

	// Services
	bookmarks := service.NewBookmarkService(bookmarkRepo, listingCache, extractor, loggerClient)
	users := service.NewUserService(userRepo, tokenRepo, cfg.BcryptCost, loggerClient)

	// Dead-link sweeper
	sweeper := scheduler.NewSweeper(bookmarks, loggerClient, cfg.SweepInterval)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:      loggerClient,
		StartTime:   time.Now(),
		Version:     version.Version,
		Commit:      version.Commit,
		BuildDate:   version.BuildDate,
		GoVersion:   version.GoVersion,
		TimeNow:     time.Now,
		TrustProxy:  cfg.TrustProxy,
		RedisClient: redisClient,
		DB:          db,
		Bookmarks:   bookmarks,
		Users:       users,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		db:          db,
		sweeper:     sweeper,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Marks v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Marks %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the dead-link sweeper (runs one pass immediately)
	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bookmark sweeper: %w", err)
	}
	a.logger.Info("bookmark sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop the sweeper
	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if err := postgres.Close(a.db); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	} else {
		a.logger.Info("✅ Database closed cleanly")
	}

	a.logger.Info("✅ Marks stopped cleanly")
	return nil
}
