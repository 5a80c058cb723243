package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus returns uptime, analyzer run counts and the latest score per restaurant
func (a *InsightsAPI) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.Monitor.Status())
}

func (a *InsightsAPI) GetDashboard(c *gin.Context) {
	d, err := a.Insights.Dashboard(c.Request.Context(), restaurantID(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (a *InsightsAPI) GetMenuEngineering(c *gin.Context) {
	r, err := a.Insights.Menu(c.Request.Context(), restaurantID(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (a *InsightsAPI) GetRevenueForecast(c *gin.Context) {
	r, err := a.Insights.Revenue(c.Request.Context(), restaurantID(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (a *InsightsAPI) GetKitchenIntelligence(c *gin.Context) {
	r, err := a.Insights.Kitchen(c.Request.Context(), restaurantID(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (a *InsightsAPI) GetInventoryPredictions(c *gin.Context) {
	r, err := a.Insights.Inventory(c.Request.Context(), restaurantID(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (a *InsightsAPI) GetReservationInsights(c *gin.Context) {
	r, err := a.Insights.Reservations(c.Request.Context(), restaurantID(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
