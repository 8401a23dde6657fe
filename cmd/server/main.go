package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
	"github.com/stitts-dev/hoops-oracle/internal/api"
	"github.com/stitts-dev/hoops-oracle/internal/api/handlers"
	"github.com/stitts-dev/hoops-oracle/internal/draft"
	"github.com/stitts-dev/hoops-oracle/internal/mapper"
	"github.com/stitts-dev/hoops-oracle/internal/models"
	"github.com/stitts-dev/hoops-oracle/internal/providers"
	"github.com/stitts-dev/hoops-oracle/internal/services"
	"github.com/stitts-dev/hoops-oracle/internal/websocket"
	"github.com/stitts-dev/hoops-oracle/pkg/config"
	"github.com/stitts-dev/hoops-oracle/pkg/database"
	"github.com/stitts-dev/hoops-oracle/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(models.AllModels()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional; the pool is refetched on every request without it
	var poolCache services.PoolCache = services.NoopCache{}
	var cachePinger handlers.Pinger
	if cfg.RedisURL != "" {
		if cacheService, err := connectRedis(ctx, cfg.RedisURL); err != nil {
			log.WithError(err).Warn("Redis unavailable, player pool caching disabled")
		} else {
			defer cacheService.Close()
			poolCache = cacheService
			cachePinger = cacheService
		}
	}

	// Valuation engine
	analyzer := analytics.NewCategoryAnalyzer(analytics.AnalyzerConfig{
		MinGamesPlayed:   cfg.MinGamesPlayed,
		PuntThreshold:    cfg.PuntThreshold,
		ReplacementLevel: cfg.ReplacementLevel,
	})
	engine := analytics.NewDraftEngine(analyzer)

	// Yahoo provider
	oauthConfig := providers.NewYahooOAuthConfig(cfg.YahooClientID, cfg.YahooClientSecret, cfg.YahooRedirectURI)
	tokens := providers.NewStoredTokenSource(oauthConfig, providers.NewGormTokenRepository(db.DB))
	yahoo := providers.NewYahooClient(providers.YahooConfig{
		BaseURL:          cfg.YahooBaseURL,
		Timeout:          cfg.ExternalAPITimeout,
		RateLimit:        cfg.YahooRateLimit,
		Burst:            cfg.YahooBurst,
		FailureThreshold: cfg.CircuitBreakerThreshold,
	}, tokens, log)

	snapshots := services.NewGormSnapshotStore(db.DB)
	playerData := services.NewPlayerDataService(
		yahoo,
		mapper.NewYahooMapper(nil, log),
		poolCache,
		snapshots,
		analyzer,
		engine,
		services.PlayerDataConfig{
			PoolSize:         cfg.PoolSize,
			CacheTTL:         cfg.PlayerCacheTTL,
			ReplacementLevel: cfg.ReplacementLevel,
		},
		log,
	)

	// Draft sessions
	var sessionStore draft.SessionStore = draft.NewMemoryStore()
	if cfg.SessionStore == "database" {
		sessionStore = draft.NewGormStore(db.DB)
	}
	hub := websocket.NewHub(cfg.CorsOrigins, log)
	go hub.Run(ctx)
	manager := draft.NewManager(sessionStore, hub, cfg.YahooLeagueKey, cfg.LeagueSize, log)

	routes := api.Handlers{
		Players:  handlers.NewPlayerHandler(playerData, cfg.YahooLeagueKey),
		Analysis: handlers.NewAnalysisHandler(analyzer, engine),
		Trades:   handlers.NewTradeHandler(playerData, cfg.YahooLeagueKey),
		Draft:    handlers.NewDraftHandler(manager, playerData, hub),
	}
	if cfg.YahooConfigured() {
		routes.Auth = handlers.NewAuthHandler(tokens, cfg.IsProduction(), log)
	} else {
		log.Warn("Yahoo credentials not set, OAuth routes disabled")
	}

	// Background pool sync
	var syncReporter handlers.SyncReporter
	if cfg.YahooLeagueKey != "" {
		syncService := services.NewSyncService(playerData, snapshots, cfg.YahooLeagueKey, cfg.SyncInterval, log)
		routes.Sync = handlers.NewSyncHandler(syncService)
		syncReporter = syncService
		if cfg.EnableBackgroundJobs {
			if err := syncService.Start(); err != nil {
				log.WithError(err).Error("Failed to start pool sync")
			}
			defer syncService.Stop()
		}
	}
	routes.Health = handlers.NewHealthHandler(db, cachePinger, yahoo, syncReporter)

	router := api.NewRouter(routes, cfg.JWTSecret, cfg.CorsOrigins, log)

	if cfg.IsDevelopment() {
		for _, route := range router.Routes() {
			log.Debugf("%s %s", route.Method, route.Path)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithService(log, "hoops-oracle").WithField("env", cfg.Env).Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	cancel()

	log.Info("Server exited")
}

type redisCache struct {
	*services.CacheService
	client *redis.Client
}

func (r redisCache) Close() error {
	return r.client.Close()
}

func connectRedis(ctx context.Context, url string) (redisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return redisCache{}, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return redisCache{}, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return redisCache{CacheService: services.NewCacheService(client), client: client}, nil
}
