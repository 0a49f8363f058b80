package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/order"
	paymentapp "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/email"
	"github.com/storefront/backend/internal/infrastructure/logger"
	infrapayment "github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize telemetry providers. Both fall back to no-op providers
	// when disabled, so the rest of the wiring never branches on it.
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Register query spans on the GORM instance
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	paymentLogRepo := persistence.NewGormPaymentLogRepository(db.DB)
	webhookEventRepo := persistence.NewGormWebhookEventRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	adminRepo := persistence.NewGormAdminRepository(db.DB)
	verificationLogRepo := persistence.NewGormVerificationLogRepository(db.DB)

	// Verification mail transport; console transport in development
	emailSender, err := email.NewSender(cfg.Email, cfg.App.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize email sender", zap.Error(err))
	}

	// Token issuing and revocation. The blacklist falls back to the
	// in-process store when Redis is not configured.
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		blacklist = redisBlacklist
		log.Info("Redis token blacklist enabled",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis not configured, using in-memory token blacklist")
	}

	// Product image storage; the stub keeps local development working
	// without an object store.
	var imageStore catalogapp.ImageStore
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3ImageStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := s3Store.EnsureBucket(ctx); err != nil {
			cancel()
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		cancel()
		imageStore = s3Store
		log.Info("Object storage connected", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		imageStore = storage.NewStubImageStore()
		log.Warn("Object storage disabled, using stub image store")
	}

	// Hosted payment gateway adapter
	gateway, err := infrapayment.NewRazorpayAdapter(&infrapayment.RazorpayConfig{
		KeyID:         cfg.Payment.KeyID,
		KeySecret:     cfg.Payment.KeySecret,
		WebhookSecret: cfg.Payment.WebhookSecret,
		BaseURL:       cfg.Payment.BaseURL,
	}, cfg.Payment.Timeout)
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Initialize application services
	verificationService := identityapp.NewVerificationService(userRepo, verificationLogRepo, emailSender, log)
	authService := identityapp.NewAuthService(userRepo, adminRepo, verificationService, jwtService, blacklist, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)
	imageService := catalogapp.NewImageService(productRepo, imageStore, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, log)
	checkoutService, err := orderapp.NewCheckoutService(orderRepo, cartRepo, productRepo, cfg.Checkout, log)
	if err != nil {
		log.Fatal("Failed to initialize checkout service", zap.Error(err))
	}
	orderService := orderapp.NewOrderService(orderRepo, productRepo, nil, log)
	paymentService := paymentapp.NewPaymentService(paymentRepo, paymentLogRepo, orderRepo, gateway, checkoutService, log)
	webhookService := paymentapp.NewWebhookService(webhookEventRepo, paymentRepo, paymentService, gateway, log)

	// Business metrics ride on the meter provider; when telemetry is
	// off the provider is a no-op and collection is skipped entirely.
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:         meterProvider.Meter("storefront-business"),
			Logger:        log,
			StockProvider: productRepo,
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		checkoutService.SetBusinessMetrics(businessMetrics)
		paymentService.SetBusinessMetrics(businessMetrics)
		webhookService.SetBusinessMetrics(businessMetrics)
		businessMetrics.StartPeriodicCollection(context.Background(), 0, 0)
		defer businessMetrics.Stop()
	}

	// Initialize HTTP handlers
	handlers := router.Handlers{
		System:   handler.NewSystemHandler(db.DB),
		Auth:     handler.NewAuthHandler(authService, verificationService),
		Product:  handler.NewProductHandler(productService, imageService),
		Category: handler.NewCategoryHandler(categoryService),
		Cart:     handler.NewCartHandler(cartService),
		Order:    handler.NewOrderHandler(checkoutService, orderService),
		Payment:  handler.NewPaymentHandler(paymentService, webhookService),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	routerCfg := router.DefaultConfig()
	routerCfg.CORS = middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	routerCfg.Tracing = middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}
	routerCfg.MaxBodyBytes = cfg.HTTP.MaxBodySize
	routerCfg.MetricsEnabled = meterProvider.IsEnabled()
	routerCfg.MeterProvider = meterProvider

	engine := router.New(routerCfg, router.Dependencies{
		JWTService: jwtService,
		Blacklist:  blacklist,
		Logger:     log,
	}, handlers)

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
