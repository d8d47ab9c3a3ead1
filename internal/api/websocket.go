package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/steeveross-eng/huntiq-telemetry/internal/realtime"
)

// upgrader accepts any origin: the HuntIQ dashboard is the only documented
// client and CORS already gates browser access at the HTTP layer.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// upgradeAndServe upgrades the request to a WebSocket connection,
// registers it with hub subscribed to topics, and starts its read/write
// pumps (SPEC_FULL.md §4.Q).
func upgradeAndServe(c *gin.Context, hub *realtime.Hub, topics ...string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(hub, conn, topics...)
	hub.Register <- client
	client.Start()
}

// GeolocationWS handles GET /geolocation/ws, the realtime counterpart to
// the HTTP polling endpoints — broadcasting nothing on its own, but
// available for a future per-user tracking topic; for now it simply keeps
// the connection alive for the hub's lifecycle-driven clients.
func (h *Handler) GeolocationWS(c *gin.Context) {
	upgradeAndServe(c, h.hub)
}
