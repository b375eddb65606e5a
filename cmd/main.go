package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"storefront-checkout/configs"
	"storefront-checkout/internal/clients"
	"storefront-checkout/internal/handlers"
	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/repositories"
	"storefront-checkout/internal/services"
	"storefront-checkout/pkg/auth"
	"storefront-checkout/pkg/cache"
	"storefront-checkout/pkg/database"
	"storefront-checkout/pkg/logger"
	"storefront-checkout/pkg/messaging"
	"storefront-checkout/pkg/sms"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	config := configs.LoadConfig()

	log := logger.New(config.Log.Env)
	defer log.Sync()

	// Set Gin mode
	gin.SetMode(config.Server.Mode)

	// Initialize database connections; both are optional
	db := database.NewDatabase(config.Database.PostgresURL, config.Database.MongoURL, config.Database.MongoDBName, log)
	defer db.Close()

	var couponRepo repositories.CouponRepository
	if db.Postgres != nil {
		if err := db.Postgres.AutoMigrate(&models.Coupon{}); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		couponRepo = repositories.NewCouponRepository(db.Postgres)
	}

	var orderRefRepo repositories.OrderReferenceRepository
	if db.MongoDB != nil {
		orderRefRepo = repositories.NewOrderReferenceRepository(db.MongoDB)
	}

	// Cart storage: Redis when reachable, local files otherwise
	var cartStorage repositories.CartStorage
	redisCache := cache.NewRedisCache(config.Redis.URL, config.Redis.Password, config.Redis.DB, log)
	if redisCache != nil {
		defer redisCache.Close()
		cartStorage = repositories.NewRedisCartStorage(redisCache, config.Redis.CartTTL)
	} else {
		dir := filepath.Join(os.TempDir(), "storefront-carts")
		fileStorage, err := repositories.NewFileCartStorage(dir)
		if err != nil {
			log.Fatal("Failed to initialize cart storage", zap.Error(err))
		}
		log.Warn("Redis unavailable, storing carts on local disk", zap.String("dir", dir))
		cartStorage = fileStorage
	}

	var events services.EventPublisher
	if config.Kafka.Enabled {
		kafkaProducer := messaging.NewKafkaProducer(config.Kafka.Brokers, config.Kafka.Topic, log)
		defer kafkaProducer.Close()
		events = kafkaProducer
	}

	var notifier services.OrderNotifier
	if config.SMS.APIKey != "" {
		notifier = sms.NewSMSService(config.SMS.APIKey, config.SMS.SenderID, config.SMS.BaseURL)
	}

	paymentClient, err := clients.NewPaymentSessionClient(config.Payment)
	if err != nil {
		log.Fatal("Failed to initialize payment provider", zap.Error(err))
	}
	orderClient := clients.NewOrderClient(config.OrderService.BaseURL, config.OrderService.APIKey, config.OrderService.Timeout)

	jwtManager := auth.NewJWTManager(config.JWT.SecretKey, config.JWT.ExpiryHours)

	// Initialize services
	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	discountEngine := services.LoadCouponCatalog(startupCtx, couponRepo, log)
	cancel()

	sessionService := services.NewSessionService(services.SessionDependencies{
		Storage:   cartStorage,
		Discounts: discountEngine,
		Orders:    orderClient,
		Payments:  paymentClient,
		Events:    events,
		OrderRefs: orderRefRepo,
		Notifier:  notifier,
	}, services.SessionConfig{
		CartNamespace: config.Storefront.CartNamespace,
		SuccessURL:    config.Storefront.SuccessURL(),
		CancelURL:     config.Storefront.CancelURL(),
		Currency:      config.Storefront.Currency,
	}, log)
	trackingService := services.NewOrderTrackingService(orderClient, orderRefRepo, log)

	sweeper := services.NewCronService(sessionService, time.Minute, config.Server.SessionMaxIdle, log)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(jwtManager)
	cartHandler := handlers.NewCartHandler(sessionService)
	couponHandler := handlers.NewCouponHandler(discountEngine)
	orderHandler := handlers.NewOrderHandler(sessionService, trackingService)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CORSMiddleware(config.Server.AllowOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"service":         "storefront-checkout",
			"active_sessions": sessionService.ActiveSessions(),
		})
	})

	// API routes
	api := router.Group("/api/v1")
	sessionRequired := authMiddleware.SessionRequired()

	authHandler.RegisterRoutes(api)
	cartHandler.RegisterRoutes(api, sessionRequired)
	couponHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api, sessionRequired)

	srv := &http.Server{
		Addr:    ":" + config.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("Server starting", zap.String("port", config.Server.Port), zap.String("payment_provider", config.Payment.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
}
