package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/bondledger/backend/internal/application/bond"
	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/bondledger/backend/internal/infrastructure/auth"
	"github.com/bondledger/backend/internal/infrastructure/cache"
	"github.com/bondledger/backend/internal/infrastructure/config"
	"github.com/bondledger/backend/internal/infrastructure/logger"
	"github.com/bondledger/backend/internal/infrastructure/persistence"
	"github.com/bondledger/backend/internal/infrastructure/telemetry"
	"github.com/bondledger/backend/internal/interfaces/http/handler"
	"github.com/bondledger/backend/internal/interfaces/http/middleware"
	"github.com/bondledger/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting bond ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Summary cache: Redis when reachable, in-memory otherwise
	var summaryCache funding.SummaryCache
	redisCache, err := cache.NewRedisProjectSummaryCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory summary cache", zap.Error(err))
		summaryCache = cache.NewInMemoryProjectSummaryCache()
	} else {
		summaryCache = redisCache
	}
	defer func() {
		if err := summaryCache.Close(); err != nil {
			log.Error("Error closing summary cache", zap.Error(err))
		}
	}()

	// Repositories
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	accrualRepo := persistence.NewGormAccrualRecordRepository(db.DB)
	roleRepo := persistence.NewGormRoleBindingRepository(db.DB)

	// Application services
	issuanceService := bond.NewIssuanceService(projectRepo, ledgerRepo, accrualRepo, roleRepo)
	milestoneService := bond.NewMilestoneService(projectRepo, roleRepo, log)
	ledgerService := bond.NewLedgerService(ledgerRepo, projectRepo, accrualRepo, roleRepo, log)
	interestService := bond.NewInterestService(accrualRepo, projectRepo, ledgerRepo, log)
	roleService := bond.NewRoleService(roleRepo, log)
	queryService := bond.NewProjectQueryService(projectRepo, summaryCache, log)
	queryService.SetSummaryTTL(cfg.Accrual.SummaryCacheTTL)

	// Writes drop the cached summary so reads never serve a stale one
	// for the full TTL.
	issuanceService.SetSummaryInvalidator(queryService)
	milestoneService.SetSummaryInvalidator(queryService)

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first so every later stage can log it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig(cfg.HTTP)))
	if tracerProvider.IsEnabled() {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	// Health probes bypass authentication
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name)
	systemHandler.RegisterRoutes(engine)

	r := router.New(engine)
	r.API().Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
	}))

	r.Register(
		handler.NewProjectHandler(issuanceService, milestoneService, queryService),
		handler.NewLedgerHandler(ledgerService),
		handler.NewInterestHandler(interestService),
		handler.NewRoleHandler(roleService),
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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
