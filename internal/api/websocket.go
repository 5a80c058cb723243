package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// dashboardConn pushes dashboards to one websocket client
type dashboardConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// DashboardFeed upgrades the request and pushes the restaurant's dashboard on every interval
func (a *InsightsAPI) DashboardFeed(c *gin.Context) {
	rid := restaurantID(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "error", err, "request_id", c.GetString(requestIDKey))
		return
	}

	ws := &dashboardConn{conn: conn, done: make(chan struct{})}
	go ws.readPump()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-ws.done
		cancel()
	}()

	a.logger.Info("dashboard feed opened", "restaurant_id", rid)
	a.pushLoop(ctx, ws, rid)
	a.logger.Info("dashboard feed closed", "restaurant_id", rid)
}

// readPump drains client frames so pongs and close frames are processed
func (ws *dashboardConn) readPump() {
	defer close(ws.done)

	ws.conn.SetReadLimit(4096)
	ws.conn.SetReadDeadline(time.Now().Add(pongWait))
	ws.conn.SetPongHandler(func(string) error {
		ws.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := ws.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// pushLoop is the only writer on the connection
func (a *InsightsAPI) pushLoop(ctx context.Context, ws *dashboardConn, rid uint) {
	push := time.NewTicker(a.pushInterval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		push.Stop()
		ping.Stop()
		ws.conn.Close()
	}()

	if !a.pushDashboard(ctx, ws, rid) {
		return
	}
	for {
		select {
		case <-ws.done:
			return
		case <-push.C:
			if !a.pushDashboard(ctx, ws, rid) {
				return
			}
		case <-ping.C:
			ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// pushDashboard computes and writes one frame. It reports whether the connection is still usable.
func (a *InsightsAPI) pushDashboard(ctx context.Context, ws *dashboardConn, rid uint) bool {
	var payload interface{}
	d, err := a.Insights.Dashboard(ctx, rid)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		a.logger.Error("dashboard push failed", "restaurant_id", rid, "error", err)
		payload = gin.H{"error": "dashboard unavailable"}
	} else {
		payload = d
	}

	ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.conn.WriteJSON(payload) == nil
}
