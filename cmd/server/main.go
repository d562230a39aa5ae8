package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authapp "github.com/erp/invoicing/internal/application/auth"
	catalogapp "github.com/erp/invoicing/internal/application/catalog"
	inventoryapp "github.com/erp/invoicing/internal/application/inventory"
	invoicingapp "github.com/erp/invoicing/internal/application/invoicing"
	partnerapp "github.com/erp/invoicing/internal/application/partner"
	quotationapp "github.com/erp/invoicing/internal/application/quotation"
	reportapp "github.com/erp/invoicing/internal/application/report"
	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/auth"
	"github.com/erp/invoicing/internal/infrastructure/cache"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/erp/invoicing/internal/infrastructure/event"
	"github.com/erp/invoicing/internal/infrastructure/export"
	"github.com/erp/invoicing/internal/infrastructure/lock"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/infrastructure/persistence"
	"github.com/erp/invoicing/internal/infrastructure/printing"
	"github.com/erp/invoicing/internal/infrastructure/scheduler"
	"github.com/erp/invoicing/internal/infrastructure/storage"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/erp/invoicing/internal/interfaces/http/handler"
	"github.com/erp/invoicing/internal/interfaces/http/middleware"
	"github.com/erp/invoicing/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/erp/invoicing/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Invoicing API
//	@version		1.0
//	@description	Invoice lifecycle, payment reconciliation and sales reporting for an electrical retailer

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /auth/login. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting invoicing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	rootCtx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(rootCtx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(rootCtx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logExporter, err := telemetry.NewLogExporter(rootCtx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if logExporter.IsEnabled() {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		log = logExporter.Bridge(log, level)
	}
	profiler, err := telemetry.NewProfiler(cfg.Profiling, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
		if err := logExporter.Shutdown(ctx); err != nil {
			log.Error("Error shutting down log exporter", zap.Error(err))
		}
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs the invoice lock, the dashboard cache and the token blacklist.
	// Only the lock refuses to start without it.
	redisClient := connectRedis(cfg, log)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
	}

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)

	depletion := inventory.DepletionPolicy{DeactivateOnDepletion: cfg.Stock.DeactivateOnDepletion}

	// Invoice lifecycle
	invoiceOpts := []invoicingapp.InvoiceServiceOption{
		invoicingapp.WithDepletionPolicy(depletion),
		invoicingapp.WithLocation(cfg.App.Location()),
		invoicingapp.WithReturnRepository(persistence.NewGormReturnRepository(db.DB)),
	}
	var locker invoicingapp.Locker = invoicingapp.NoopLocker{}
	if cfg.Lock.Enabled && redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, cfg.Lock, log)
		invoiceOpts = append(invoiceOpts, invoicingapp.WithLocker(locker))
		log.Info("Distributed invoice lock enabled", zap.Duration("ttl", cfg.Lock.TTL))
	}
	invoiceService := invoicingapp.NewInvoiceService(
		invoiceRepo,
		customerRepo,
		stockRepo,
		persistence.NewGormTransactionScope(db.DB),
		shared.NewInvoiceIDGenerator(),
		log,
		invoiceOpts...,
	)

	var printService *invoicingapp.PrintService
	if cfg.Printing.Enabled {
		renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			ExecPath:       cfg.Printing.ChromePath,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		printService = invoicingapp.NewPrintService(invoiceRepo, printing.NewInvoicePrinter(renderer, cfg.Printing.ShopName), log)
		log.Info("Invoice printing enabled")
	}

	// Dashboard
	dashboardOpts := []reportapp.DashboardServiceOption{reportapp.WithExporter(export.NewXLSXExporter())}
	var dashboardCache cache.DashboardCache
	if cfg.Cache.Enabled {
		factory := cache.NewFactory(cfg.Cache, cache.WithLogger(log))
		dashboardCache, err = factory.Create(rootCtx, redisClientOrNil(redisClient))
		if err != nil {
			log.Fatal("Failed to initialize dashboard cache", zap.Error(err))
		}
		dashboardOpts = append(dashboardOpts, reportapp.WithDashboardCache(dashboardCache))
	}
	if cfg.Storage.Enabled {
		objectStore, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := objectStore.EnsureBucket(rootCtx); err != nil {
			log.Fatal("Failed to prepare export bucket", zap.Error(err))
		}
		dashboardOpts = append(dashboardOpts, reportapp.WithObjectStore(objectStore))
	}
	dashboardService := reportapp.NewDashboardService(invoiceRepo, log, dashboardOpts...)

	// Events
	eventBus := event.NewInMemoryEventBus(log)
	if dashboardCache != nil {
		eventBus.Subscribe(cache.NewDashboardInvalidator(dashboardCache, log))
	}
	invoiceMetrics, err := telemetry.NewInvoiceMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create invoice metrics", zap.Error(err))
	}
	eventBus.Subscribe(invoiceMetrics)
	invoiceService.SetEventPublisher(eventBus)

	// Remaining services
	quotationService := quotationapp.NewQuotationService(quotationRepo, customerRepo, stockRepo, shared.NewQuotationIDGenerator(), depletion, log)
	customerService := partnerapp.NewCustomerService(customerRepo)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo)
	stockService := inventoryapp.NewStockService(stockRepo, productRepo)

	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient, cfg.Cache.KeyPrefix+"revoked:")
	}
	authService := authapp.NewAuthService(cfg.Admin, jwtService, blacklist, log)

	// Cheque sweep
	if cfg.Cheque.SweepEnabled {
		sweepCfg := scheduler.DefaultConfig()
		sweepCfg.Interval = cfg.Cheque.SweepInterval
		var sweepOpts []scheduler.Option
		if cfg.Lock.Enabled && redisClient != nil {
			sweepOpts = append(sweepOpts, scheduler.WithLocker(locker))
		}
		sweep := scheduler.NewScheduler(sweepCfg, scheduler.NewChequeSweepJob(invoiceService, log), log, sweepOpts...)
		if err := sweep.Start(rootCtx); err != nil {
			log.Fatal("Failed to start cheque sweep", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sweep.Stop(ctx); err != nil {
				log.Error("Error stopping cheque sweep", zap.Error(err))
			}
		}()
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.Telemetry.ServiceName, Enabled: cfg.Telemetry.Enabled}),
		middleware.TraceAttributes(),
		httpMetrics,
		middleware.Profiling(cfg.Profiling.Enabled),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		}),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		})
	}

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Invoice:   handler.NewInvoiceHandler(invoiceService, printService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Quotation: handler.NewQuotationHandler(quotationService),
		Customer:  handler.NewCustomerHandler(customerService),
		Catalog:   handler.NewCatalogHandler(categoryService, productService),
		Stock:     handler.NewStockHandler(stockService),
		System:    handler.NewSystemHandler(version, checks),
	}
	guards := router.Guards{
		Auth: middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		Login: middleware.RateLimit(middleware.NewRateLimiter(10, time.Minute)),
	}

	r := router.NewRouter(engine)
	r.Register(router.Groups(handlers, guards)...)
	r.Setup()

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, guards.Auth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// connectRedis returns nil when Redis is unreachable and the invoice lock is off
func connectRedis(cfg *config.Config, log *zap.Logger) *redis.Client {
	client, err := cache.NewRedisClient(cfg.Redis)
	if err == nil {
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		return client
	}
	if cfg.Lock.Enabled {
		log.Fatal("Redis is required when lock.enabled is set", zap.Error(err))
	}
	log.Warn("Redis unavailable, using in-process fallbacks", zap.Error(err))
	return nil
}

// redisClientOrNil keeps a nil *redis.Client from becoming a non-nil interface
func redisClientOrNil(client *redis.Client) redis.UniversalClient {
	if client == nil {
		return nil
	}
	return client
}
