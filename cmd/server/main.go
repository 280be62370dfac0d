package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashascraft/storefront-backend/config"
	"github.com/ashascraft/storefront-backend/internal/app/controller"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/internal/app/service"
	"github.com/ashascraft/storefront-backend/internal/db"
	"github.com/ashascraft/storefront-backend/internal/middleware"
	"github.com/ashascraft/storefront-backend/internal/router"
	"github.com/ashascraft/storefront-backend/internal/scheduler"
	"github.com/ashascraft/storefront-backend/internal/storage"
	"github.com/ashascraft/storefront-backend/internal/websocket"
	"github.com/ashascraft/storefront-backend/pkg/analytics"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/ashascraft/storefront-backend/pkg/notify"
	"github.com/ashascraft/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	format := "console"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	if cfg.IsProduction() {
		format = "json"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      format,
		EnableColor: !cfg.IsProduction(),
	})

	logger.Info("Starting storefront backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis is optional
	var cartSessions repository.CartSessionRepository
	if cfg.Redis.Host != "" && redis.Init(&cfg.Redis) == nil {
		cartSessions = repository.NewRedisCartSessionRepository(redis.GetClient(), cfg.Redis.CartTTL)
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	} else {
		logger.Warn("Redis not configured, carts are kept in memory", nil)
		cartSessions = repository.NewMemoryCartSessionRepository()
	}
	blacklist := redis.NewTokenBlacklist(redis.GetClient())

	blobs := newBlobStorage(&cfg.Storage)
	alerter, mailer := newNotifiers(&cfg.Notify)
	publisher := newPublisher(&cfg.Analytics)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close analytics publisher", err)
		}
	}()

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	dispatcher := service.NewOrderEventDispatcher(hub, alerter, mailer, publisher)

	// Initialize repositories
	conn := db.GetDB()
	userRepo := repository.NewUserRepository(conn)
	productRepo := repository.NewProductRepository(conn)
	categoryRepo := repository.NewCategoryRepository(conn)
	tagRepo := repository.NewTagRepository(conn)
	orderRepo := repository.NewOrderRepository(conn)
	settingRepo := repository.NewSettingRepository(conn)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		blacklist,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, tagRepo)
	settingsService := service.NewSettingsService(settingRepo)
	cartService := service.NewCartService(cartSessions, productRepo, settingsService, publisher)
	checkoutService := service.NewCheckoutService(
		cartService,
		orderRepo,
		service.NewOrderNumberGenerator(cfg.Store.OrderPrefix, orderRepo),
		dispatcher,
	)
	orderService := service.NewOrderService(orderRepo, productRepo, dispatcher)
	productService := service.NewProductService(productRepo, categoryRepo, tagRepo, blobs)
	taxonomyService := service.NewTaxonomyService(categoryRepo, tagRepo)
	uploadService := service.NewUploadService(blobs, cfg.Storage.MaxImageSize)

	if _, created, err := authService.EnsureAdmin(cfg.Store.AdminEmail, cfg.Store.AdminPassword, cfg.Store.AdminName); err != nil {
		logger.Fatal("Failed to bootstrap admin account", err)
	} else if created {
		logger.Info("Admin account ready", map[string]interface{}{
			"email": cfg.Store.AdminEmail,
		})
	}

	// Initialize controllers
	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewCatalogController(catalogService),
		controller.NewCartController(cartService),
		controller.NewCheckoutController(checkoutService, settingsService),
		controller.NewOrderController(orderService),
		controller.NewSettingsController(settingsService),
		controller.NewAdminProductController(productService),
		controller.NewAdminTaxonomyController(taxonomyService, catalogService),
		controller.NewAdminOrderController(orderService, service.NewOrderExporter(orderRepo), hub, cfg.CORS.AllowedOrigins),
		controller.NewUploadController(uploadService),
		middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklist),
		cfg,
	)

	digest := scheduler.NewPendingOrderScheduler(cfg.Scheduler.DigestCron, cfg.Scheduler.StalePendingAge, orderService, alerter)
	if err := digest.Start(); err != nil {
		logger.Warn("Pending order digest disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer digest.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	dispatcher.Wait()
	logger.Info("Server stopped successfully")
}

func newBlobStorage(cfg *config.StorageConfig) storage.BlobStorage {
	switch cfg.Provider {
	case "cloudinary":
		if cfg.CloudinaryURL == "" {
			break
		}
		s, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL)
		if err != nil {
			logger.Error("Failed to configure Cloudinary", err)
			return nil
		}
		return s
	case "s3":
		if cfg.S3.Bucket == "" || cfg.S3.AccessKeyID == "" {
			break
		}
		return storage.NewS3Storage(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)
	}
	logger.Warn("Image storage not configured, uploads are disabled", map[string]interface{}{
		"provider": cfg.Provider,
	})
	return nil
}

func newNotifiers(cfg *config.NotifyConfig) (notify.Alerter, notify.Mailer) {
	alerter := notify.NopAlerter()
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramAlerter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Error("Failed to configure Telegram alerts", err)
		} else {
			alerter = tg
		}
	}

	mailer := notify.NopMailer()
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	}
	return alerter, mailer
}

func newPublisher(cfg *config.AnalyticsConfig) analytics.Publisher {
	if cfg.AMQPURL == "" {
		return analytics.NopPublisher()
	}
	p, err := analytics.NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		logger.Error("Failed to connect analytics broker", err)
		return analytics.NopPublisher()
	}
	return p
}
