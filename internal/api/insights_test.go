package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brigade/internal/analytics"
	"brigade/internal/models"
	"brigade/internal/monitoring"
	"brigade/internal/store"
)

const testSecret = "test-secret"

var testNow = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

type mapProvider map[uint]*analytics.Dataset

func (p mapProvider) Dataset(_ context.Context, restaurantID uint, _ time.Time) (*analytics.Dataset, error) {
	ds, ok := p[restaurantID]
	if !ok {
		return nil, store.ErrRestaurantNotFound
	}
	return ds, nil
}

type tenantMap map[uint]uint

func (m tenantMap) RestaurantByTenant(_ context.Context, tenantID uint) (*models.Restaurant, error) {
	id, ok := m[tenantID]
	if !ok {
		return nil, store.ErrRestaurantNotFound
	}
	return &models.Restaurant{ID: id, TenantID: tenantID}, nil
}

func sampleDataset() *analytics.Dataset {
	created := testNow.Add(-2 * time.Hour)
	return &analytics.Dataset{
		RestaurantID: 7,
		MenuItems: []models.MenuItem{
			{ID: 1, RestaurantID: 7, Name: "Burger", Category: "Mains", Price: 1000, CostPrice: 400, IsAvailable: true},
		},
		Orders: []models.Order{
			{ID: 1, RestaurantID: 7, Status: models.OrderStatusServed, Type: models.OrderTypeDineIn, Total: 2000, CreatedAt: created,
				Items: []models.OrderItem{{ID: 1, OrderID: 1, MenuItemID: 1, Quantity: 2, UnitPrice: 1000}}},
		},
	}
}

func newTestAPI(t *testing.T) (*InsightsAPI, *monitoring.Monitor) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	monitor := monitoring.NewMonitor()
	engine := analytics.NewEngine(
		mapProvider{7: sampleDataset()},
		analytics.DefaultPolicy(),
		analytics.WithClock(func() time.Time { return testNow }),
		analytics.WithRecorder(monitor),
	)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	api := NewInsightsAPI(engine, tenantMap{70: 7, 80: 8}, monitor, Options{
		JWTSecret:    testSecret,
		PushInterval: time.Hour,
		Logger:       logger,
	})
	return api, monitor
}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func get(api *InsightsAPI, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	api, _ := newTestAPI(t)

	w := get(api, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Echoed(t *testing.T) {
	api, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	api, _ := newTestAPI(t)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong secret", signToken(t, jwt.MapClaims{"restaurant_id": 7}, "other"), http.StatusUnauthorized},
		{"expired", signToken(t, jwt.MapClaims{"restaurant_id": 7, "exp": time.Now().Add(-time.Hour).Unix()}, testSecret), http.StatusUnauthorized},
		{"no restaurant claim", signToken(t, jwt.MapClaims{"sub": "someone"}, testSecret), http.StatusUnauthorized},
		{"unknown tenant", signToken(t, jwt.MapClaims{"tenant_id": 99}, testSecret), http.StatusNotFound},
		{"restaurant claim", signToken(t, jwt.MapClaims{"restaurant_id": 7}, testSecret), http.StatusOK},
		{"tenant claim", signToken(t, jwt.MapClaims{"tenant_id": 70}, testSecret), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(api, "/api/v1/ai/menu-engineering", tt.token)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestMissingTokenMessage(t *testing.T) {
	api, _ := newTestAPI(t)
	w := get(api, "/api/v1/ai/dashboard", "")

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrMissingToken.Error(), body["error"])
}

func TestInsightEndpoints(t *testing.T) {
	api, _ := newTestAPI(t)
	token := signToken(t, jwt.MapClaims{"restaurant_id": 7}, testSecret)

	paths := map[string]string{
		"/api/v1/ai/dashboard":             `"health_score"`,
		"/api/v1/ai/menu-engineering":      `"Burger"`,
		"/api/v1/ai/revenue-forecast":      `"forecast"`,
		"/api/v1/ai/kds-intelligence":      `"bottlenecks"`,
		"/api/v1/ai/inventory-predictions": `"predictions"`,
		"/api/v1/ai/reservation-insights":  `"no_show_analysis"`,
	}
	for path, fragment := range paths {
		t.Run(path, func(t *testing.T) {
			w := get(api, path, token)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), fragment)
		})
	}
}

func TestDashboard_UnknownRestaurant(t *testing.T) {
	api, _ := newTestAPI(t)
	token := signToken(t, jwt.MapClaims{"tenant_id": 80}, testSecret)

	w := get(api, "/api/v1/ai/dashboard", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "restaurant not found")
}

func TestStatus_ReflectsComputedDashboards(t *testing.T) {
	api, _ := newTestAPI(t)
	token := signToken(t, jwt.MapClaims{"restaurant_id": 7}, testSecret)
	require.Equal(t, http.StatusOK, get(api, "/api/v1/ai/dashboard", token).Code)

	w := get(api, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var status monitoring.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	require.Len(t, status.Restaurants, 1)
	assert.Equal(t, uint(7), status.Restaurants[0].RestaurantID)
	assert.Equal(t, 1, status.AnalyzerRuns[analytics.ModuleMenu])
}

func TestDashboardFeed(t *testing.T) {
	api, _ := newTestAPI(t)
	srv := httptest.NewServer(api.Router)
	defer srv.Close()

	token := signToken(t, jwt.MapClaims{"restaurant_id": 7}, testSecret)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var d analytics.Dashboard
	require.NoError(t, conn.ReadJSON(&d))
	assert.Equal(t, uint(7), d.RestaurantID)
	assert.True(t, testNow.Equal(d.GeneratedAt))
}

func TestDashboardFeed_RequiresToken(t *testing.T) {
	api, _ := newTestAPI(t)
	srv := httptest.NewServer(api.Router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
