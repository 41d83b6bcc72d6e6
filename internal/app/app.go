package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/smartbookmark/bookmarkd/internal/auth"
	"github.com/smartbookmark/bookmarkd/internal/config"
	"github.com/smartbookmark/bookmarkd/internal/feed"
	"github.com/smartbookmark/bookmarkd/internal/httpserver"
	"github.com/smartbookmark/bookmarkd/internal/httpserver/deps"
	"github.com/smartbookmark/bookmarkd/internal/logger"
	"github.com/smartbookmark/bookmarkd/internal/redis"
	"github.com/smartbookmark/bookmarkd/internal/scheduler"
	"github.com/smartbookmark/bookmarkd/internal/session"
	redisstore "github.com/smartbookmark/bookmarkd/internal/store/redis"
	"github.com/smartbookmark/bookmarkd/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	hub         *session.Hub
	seeder      *scheduler.SeedImporter
	reaper      *scheduler.SessionReaper
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

	store := redisstore.NewStore(redisClient)

	changeFeed := feed.NewRedis(redisClient, feed.RetryPolicy{
		InitialWait: cfg.FeedInitialWait,
		MaxWait:     cfg.FeedMaxWait,
		MaxAttempts: cfg.FeedMaxAttempts,
	}, loggerClient)

	verifier := auth.NewVerifier(cfg.AuthSecret, cfg.AuthIssuer)

	hub := session.NewHub()
	reaper := scheduler.NewSessionReaper(hub, loggerClient, cfg.SessionReapEvery, cfg.SessionIdleTTL)

	// Seed importer only runs when a seed file is configured.
	var seeder *scheduler.SeedImporter
	var seedTrigger chan struct{}
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, initializing seed importer",
			logger.String("file", cfg.SeedFile))
		seedTrigger = make(chan struct{}, 1)
		seeder = scheduler.NewSeedImporter(
			cfg.SeedFile,
			store,
			changeFeed,
			loggerClient,
			cfg.SeedReloadInterval,
			seedTrigger,
		)
	} else {
		loggerClient.Info("seed file not configured, seed import disabled")
	}

	d := deps.Deps{
		Logger:    loggerClient,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,
		TimeNow:   time.Now,

		Verifier: verifier,
		Store:    store,
		Feed:     changeFeed,
		Hub:      hub,

		RedisClient: redisClient,

		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,

		StreamWriteTimeout: cfg.StreamWriteTimeout,
		SeedReloadTrigger:  seedTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		hub:         hub,
		seeder:      seeder,
		reaper:      reaper,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting bookmarkd v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("bookmarkd %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.seeder != nil {
		if err := a.seeder.Start(ctx); err != nil {
			return fmt.Errorf("failed to start seed importer: %w", err)
		}
		a.logger.Info("seed importer started",
			logger.Duration("interval", a.cfg.SeedReloadInterval))
	}

	if err := a.reaper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}
	a.logger.Info("session reaper started",
		logger.Duration("interval", a.cfg.SessionReapEvery),
		logger.Duration("idle_ttl", a.cfg.SessionIdleTTL))

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

	if a.seeder != nil {
		a.seeder.Stop()
	}
	a.reaper.Stop()

	// Tear down live sessions before the listener so streams close with
	// a proper close frame instead of a dead socket.
	a.hub.CloseAll()

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

	a.logger.Info("✅ bookmarkd stopped cleanly")
	return nil
}
