package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/config"
	"github.com/ZODIAC3K/refactor-capstone/internal/database"
	"github.com/ZODIAC3K/refactor-capstone/internal/events"
	"github.com/ZODIAC3K/refactor-capstone/internal/handlers"
	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
	"github.com/ZODIAC3K/refactor-capstone/internal/store/memory"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	st, closeStore := openStore(cfg, logger)
	defer closeStore()

	publisher, closePublisher := openPublisher(ctx, cfg, logger)
	defer closePublisher()

	authSvc, err := auth.NewService(st, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		logger.Fatal("auth service", zap.Error(err))
	}
	if cfg.AdminEmail != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatal("seed admin account", zap.Error(err))
		}
	}

	settlementSvc, err := settlement.NewService(settlement.ServiceDeps{
		Store:                      st,
		Publisher:                  publisher,
		RejectDuplicateTransaction: cfg.RejectDuplicateTransaction,
	})
	if err != nil {
		logger.Fatal("settlement service", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), middleware.Recovery())
	handlers.RegisterRoutes(r, handlers.Deps{
		Store:      st,
		Auth:       authSvc,
		Settlement: settlementSvc,
		Cookies:    handlers.CookieOptions{Secure: cfg.CookieSecure},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore connects to MongoDB when MONGO_URI is set and falls back to the
// in-memory store otherwise.
func openStore(cfg config.Config, logger *zap.Logger) (store.Store, func()) {
	if !cfg.UseMongo() {
		logger.Warn("MONGO_URI not set; using in-memory store")
		return memory.New(), func() {}
	}

	client, err := database.Connect(cfg.MongoURI, cfg.DBTimeout)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	db := client.Database(cfg.DBName)
	logger.Info("MongoDB connected", zap.String("database", db.Name()))

	if err := database.EnsureIndexes(db); err != nil {
		logger.Warn("index warning", zap.Error(err))
	}

	return database.NewMongoStore(db), func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DBTimeout)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Warn("mongo disconnect", zap.Error(err))
		}
	}
}

// openPublisher returns the Pub/Sub publisher when a topic is configured and
// a log publisher otherwise.
func openPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (events.Publisher, func()) {
	if !cfg.UsePubSub() {
		return events.NewLogPublisher(logger.Named("events")), func() {}
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSubProjectID)
	if err != nil {
		logger.Fatal("pubsub client", zap.Error(err))
	}
	topic := client.Topic(cfg.PubSubTopic)
	publisher, err := events.NewPubSubPublisher(topic)
	if err != nil {
		logger.Fatal("pubsub publisher", zap.Error(err))
	}
	return publisher, func() {
		topic.Stop()
		if err := client.Close(); err != nil {
			logger.Warn("pubsub close", zap.Error(err))
		}
	}
}
