package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/garden-market/internal/cache"
	"github.com/garden-market/internal/config"
	"github.com/garden-market/internal/handler"
	"github.com/garden-market/internal/middleware"
	"github.com/garden-market/internal/models"
	"github.com/garden-market/internal/repository"
	"github.com/garden-market/internal/service"
	"github.com/garden-market/internal/worker"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	if err := middleware.InitLogger("logs"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis is optional; without it feed reads always hit the store
	var rdb *redis.Client
	var feedCache *cache.FeedCache
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		feedCache = cache.NewFeedCache(rdb, 30*time.Second)
	}

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	listingRepo := repository.NewListingRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Services
	authService := service.NewAuthService(accountRepo, cfg.JWT)
	accountService := service.NewAccountService(accountRepo)
	listingService := service.NewListingService(listingRepo, photoRepo, feedCache, cfg.Listings)
	socialService := service.NewSocialService(favoriteRepo, messageRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService, listingService, socialService)
	listingHandler := handler.NewListingHandler(listingService, cfg.Uploads)
	feedHandler := handler.NewFeedHandler(listingService, cfg.Listings)
	messageHandler := handler.NewMessageHandler(socialService, accountService)

	router := gin.Default()
	router.Use(middleware.RequestLoggerMiddleware())
	router.Static(strings.TrimSuffix(cfg.Uploads.URLPrefix, "/"), cfg.Uploads.Dir)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
			"time":       time.Now().Unix(),
		})
	})

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)

		authMiddleware := middleware.AuthMiddleware(authService)
		optionalAuth := middleware.OptionalAuthMiddleware(authService)

		accountHandler.RegisterRoutes(v1, authMiddleware)
		listingHandler.RegisterRoutes(v1, authMiddleware)
		feedHandler.RegisterRoutes(v1, optionalAuth)
		messageHandler.RegisterRoutes(v1, authMiddleware)
	}

	// Background expiry sweep
	expiryWorker := worker.NewExpiryWorker(listingService, time.Duration(cfg.Listings.SweepIntervalMin)*time.Minute)
	go expiryWorker.Start()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	expiryWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}

	log.Println("Server exited properly")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.Server.Mode == "release" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.Path)
	default:
		dialector = postgres.Open(cfg.Database.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Listing{},
		&models.Photo{},
		&models.Favorite{},
		&models.Message{},
	)
}
