package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"brigade/internal/analytics"
	"brigade/internal/models"
	"brigade/internal/monitoring"
	"brigade/internal/store"
)

// Insights is the analytics surface served over HTTP
type Insights interface {
	Inventory(ctx context.Context, restaurantID uint) (*analytics.InventoryReport, error)
	Kitchen(ctx context.Context, restaurantID uint) (*analytics.KitchenReport, error)
	Menu(ctx context.Context, restaurantID uint) (*analytics.MenuReport, error)
	Reservations(ctx context.Context, restaurantID uint) (*analytics.ReservationReport, error)
	Revenue(ctx context.Context, restaurantID uint) (*analytics.RevenueReport, error)
	Dashboard(ctx context.Context, restaurantID uint) (*analytics.Dashboard, error)
}

// RestaurantResolver maps an authenticated tenant to its restaurant
type RestaurantResolver interface {
	RestaurantByTenant(ctx context.Context, tenantID uint) (*models.Restaurant, error)
}

// Options configures an InsightsAPI
type Options struct {
	JWTSecret    string
	PushInterval time.Duration
	Logger       *slog.Logger
}

// InsightsAPI represents the HTTP handler for restaurant insights
type InsightsAPI struct {
	Router       *gin.Engine
	Insights     Insights
	Restaurants  RestaurantResolver
	Monitor      *monitoring.Monitor
	secret       []byte
	pushInterval time.Duration
	logger       *slog.Logger
}

// NewInsightsAPI creates a new insights API instance
func NewInsightsAPI(insights Insights, restaurants RestaurantResolver, monitor *monitoring.Monitor, opts Options) *InsightsAPI {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PushInterval <= 0 {
		opts.PushInterval = 30 * time.Second
	}

	router := gin.New()

	api := &InsightsAPI{
		Router:       router,
		Insights:     insights,
		Restaurants:  restaurants,
		Monitor:      monitor,
		secret:       []byte(opts.JWTSecret),
		pushInterval: opts.PushInterval,
		logger:       opts.Logger.With("component", "api"),
	}

	router.Use(gin.Recovery(), RequestID(), api.requestLogger())
	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (a *InsightsAPI) setupRoutes() {
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "brigade insights API is running"})
	})

	v1 := a.Router.Group("/api/v1")
	{
		v1.GET("/status", a.GetStatus)

		ai := v1.Group("/ai", a.Auth())
		{
			ai.GET("/dashboard", a.GetDashboard)
			ai.GET("/menu-engineering", a.GetMenuEngineering)
			ai.GET("/revenue-forecast", a.GetRevenueForecast)
			ai.GET("/kds-intelligence", a.GetKitchenIntelligence)
			ai.GET("/inventory-predictions", a.GetInventoryPredictions)
			ai.GET("/reservation-insights", a.GetReservationInsights)
		}
	}

	a.Router.GET("/ws/dashboard", a.Auth(), a.DashboardFeed)
}

// respondError maps an error onto a status code and JSON body
func (a *InsightsAPI) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrRestaurantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": store.ErrRestaurantNotFound.Error()})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		a.logger.Error("request failed",
			"path", c.FullPath(),
			"request_id", c.GetString(requestIDKey),
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
