package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fleet/internal/app"
	"fleet/internal/config"
	"fleet/internal/handler"
	internalRedis "fleet/internal/redis"
	"fleet/internal/repository/postgres"
	"fleet/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	if err := app.Migrate(ctx, db); err != nil {
		logger.Fatal("failed to apply schema", zap.Error(err))
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg, logger)

	// Start server in goroutine.
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, logger *zap.Logger) *http.Server {
	loc, err := time.LoadLocation(cfg.Fleet.Timezone)
	if err != nil {
		logger.Warn("invalid fleet timezone, falling back to local",
			zap.String("timezone", cfg.Fleet.Timezone), zap.Error(err))
		loc = time.Local
	}

	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	uow := postgres.NewUnitOfWork(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	odometerRepo := postgres.NewMonthlyOdometerRepository(db)
	fuelLogRepo := postgres.NewFuelLogRepository(db)

	// Initialize services.
	notifications := service.NewNotificationService(logger)
	notifications.SubscribeTripCompleted(service.MaintenanceAlertListener(logger))
	aggregator := service.NewOdometerAggregator(loc)
	tripService := service.NewTripService(uow, tripRepo, vehicleRepo, driverRepo, aggregator, notifications, lockStore, logger)
	vehicleService := service.NewVehicleService(vehicleRepo, cacheStore, logger)
	driverService := service.NewDriverService(driverRepo, cacheStore, logger)
	fuelLogService := service.NewFuelLogService(fuelLogRepo, vehicleRepo, driverRepo)
	reportService := service.NewReportService(vehicleRepo, tripRepo, odometerRepo, loc)

	// Initialize handlers.
	tripHandler := handler.NewTripHandler(tripService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	driverHandler := handler.NewDriverHandler(driverService)
	fuelLogHandler := handler.NewFuelLogHandler(fuelLogService)
	reportHandler := handler.NewReportHandler(reportService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		TripHandler:    tripHandler,
		VehicleHandler: vehicleHandler,
		DriverHandler:  driverHandler,
		FuelLogHandler: fuelLogHandler,
		ReportHandler:  reportHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		Config:         cfg,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
