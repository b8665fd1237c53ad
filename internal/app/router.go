package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleet/internal/config"
	"fleet/internal/handler"
	"fleet/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler    *handler.TripHandler
	VehicleHandler *handler.VehicleHandler
	DriverHandler  *handler.DriverHandler
	FuelLogHandler *handler.FuelLogHandler
	ReportHandler  *handler.ReportHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	Config         *config.Config
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.Config.RateLimit.Enabled {
		router.Use(middleware.RateLimit(deps.Config.RateLimit.RequestsPerMinute, deps.Config.RateLimit.Burst))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes. Everything under /v1 requires a valid token; the
	// idempotency key scope depends on the principal, so auth runs first.
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.Config.Auth.JWTSecret))
	v1.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	{
		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("", deps.TripHandler.ListTrips)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.PATCH("/:id", deps.TripHandler.UpdateTrip)
			trips.GET("/:id/briefing", deps.TripHandler.GetDriverBriefing)
		}

		// Vehicle registry routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", deps.VehicleHandler.CreateVehicle)
			vehicles.GET("", deps.VehicleHandler.ListVehicles)
			vehicles.GET("/:id", deps.VehicleHandler.GetVehicle)
			vehicles.PUT("/:id/status", deps.VehicleHandler.SetVehicleStatus)
			vehicles.GET("/:id/schedule", deps.TripHandler.GetVehicleSchedule)
		}

		// Driver directory routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.RegisterDriver)
			drivers.GET("", deps.DriverHandler.ListDrivers)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.PUT("/:id/status", deps.DriverHandler.SetDriverStatus)
		}

		// Fuel log routes.
		fuelLogs := v1.Group("/fuel-logs")
		{
			fuelLogs.POST("", deps.FuelLogHandler.CreateFuelLog)
			fuelLogs.GET("", deps.FuelLogHandler.ListFuelLogs)
		}

		// Report routes.
		reports := v1.Group("/reports")
		{
			reports.GET("/dashboard", deps.ReportHandler.GetDashboard)
			reports.GET("/odometer", deps.ReportHandler.GetOdometerReport)
		}
	}

	return router
}
