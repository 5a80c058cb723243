package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrMissingToken is returned when a request carries no bearer token
var ErrMissingToken = errors.New("authorization token required")

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	restaurantKey   = "restaurant_id"
)

// RequestID tags each request with an id, reusing the caller's X-Request-ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (a *InsightsAPI) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", c.GetString(requestIDKey))
	}
}

// Auth validates the JWT and resolves the caller's restaurant
func (a *InsightsAPI) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, _ := token.Claims.(jwt.MapClaims)
		rid, err := a.restaurantFromClaims(c, claims)
		if err != nil {
			a.respondError(c, err)
			c.Abort()
			return
		}
		if rid == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token carries no restaurant"})
			c.Abort()
			return
		}

		c.Set(restaurantKey, rid)
		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to ?token= for websocket clients
func bearerToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), nil
	}
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", ErrMissingToken
}

func (a *InsightsAPI) restaurantFromClaims(c *gin.Context, claims jwt.MapClaims) (uint, error) {
	if id, ok := numericClaim(claims, "restaurant_id"); ok {
		return id, nil
	}
	tenantID, ok := numericClaim(claims, "tenant_id")
	if !ok || a.Restaurants == nil {
		return 0, nil
	}
	r, err := a.Restaurants.RestaurantByTenant(c.Request.Context(), tenantID)
	if err != nil {
		return 0, fmt.Errorf("resolve tenant %d: %w", tenantID, err)
	}
	return r.ID, nil
}

// numericClaim reads a positive integer claim; JSON numbers decode as float64
func numericClaim(claims jwt.MapClaims, key string) (uint, bool) {
	v, ok := claims[key].(float64)
	if !ok || v < 1 {
		return 0, false
	}
	return uint(v), true
}

func restaurantID(c *gin.Context) uint {
	id, _ := c.Get(restaurantKey)
	rid, _ := id.(uint)
	return rid
}
