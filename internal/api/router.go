package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/steeveross-eng/huntiq-telemetry/internal/api/middleware"
	"github.com/steeveross-eng/huntiq-telemetry/internal/config"
	"github.com/steeveross-eng/huntiq-telemetry/internal/external"
)

// RegisterRoutes wires every route in spec.md §6 plus SPEC_FULL.md's added
// metrics and WebSocket endpoints onto router, gating identified routes
// behind an Auth middleware backed by authorizer and a per-IP rate limiter
// configured by rateLimitCfg.
func RegisterRoutes(router *gin.Engine, h *Handler, authorizer external.Authorizer, rateLimitCfg config.RateLimitConfig) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(rateLimitCfg.RequestsPerSecond, rateLimitCfg.Burst)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(limiter))
	api.Use(middleware.Auth(authorizer))

	geolocation := api.Group("/geolocation")
	{
		geolocation.POST("/location", h.RecordPosition)
		geolocation.GET("/history", h.GeolocationHistory)
		geolocation.POST("/session/start", h.StartTrackingSession)
		geolocation.POST("/session/:id/end", h.EndTrackingSession)
		geolocation.POST("/subscribe", h.Subscribe)
		geolocation.DELETE("/subscribe", h.Unsubscribe)
		geolocation.GET("/nearby-hotspots", h.NearbyHotspots)
		geolocation.POST("/check-proximity", h.CheckProximity)
		geolocation.GET("/ws", h.GeolocationWS)
	}

	trips := api.Group("/trips")
	{
		trips.POST("/create", h.CreateTrip)
		trips.POST("/start", h.StartTrip)
		trips.POST("/end", h.EndTrip)
		trips.POST("/observations", h.LogObservation)
		trips.GET("/statistics", h.TripStatistics)
		trips.GET("", h.ListTrips)
	}

	waypoints := api.Group("/waypoints")
	{
		waypoints.POST("", h.UpsertWaypoint)
		waypoints.GET("", h.ListWaypoints)
		waypoints.GET("/:id", h.GetWaypoint)
		waypoints.DELETE("/:id", h.DeleteWaypoint)
	}

	scoring := api.Group("/waypoint-scoring")
	{
		scoring.GET("/wqs/:id", h.WaypointWQS)
		scoring.GET("/heatmap", h.WaypointHeatmap)
	}

	heading := api.Group("/live-heading")
	{
		heading.POST("/session", h.CreateHeadingSession)
		heading.POST("/position", h.UpdateHeadingPosition)
		heading.GET("/session/:id", h.GetHeadingSession)
		heading.POST("/session/:id/settings", h.UpdateHeadingSettings)
		heading.POST("/session/:id/pause", h.PauseHeadingSession)
		heading.POST("/session/:id/resume", h.ResumeHeadingSession)
		heading.POST("/session/:id/end", h.EndHeadingSession)
		heading.GET("/session/:id/ws", h.HeadingSessionWS)
	}

	tracking := api.Group("/tracking")
	{
		tracking.GET("/group/:group_id/positions", h.GroupPositions)
		tracking.POST("/group/:group_id/positions", h.UpdateGroupPosition)
		tracking.DELETE("/group/:group_id/positions", h.StopSharingGroupPosition)
		tracking.GET("/group/:group_id/ws", h.GroupPositionsWS)
	}

	chat := api.Group("/chat")
	{
		chat.POST("/:group_id/message/:user_id", h.SendMessage)
		chat.POST("/:group_id/alert/:user_id", h.SendAlert)
		chat.GET("/:group_id/history", h.ChatHistory)
		chat.POST("/:group_id/read/:user_id", h.MarkChatRead)
		chat.GET("/:group_id/unread/:user_id", h.ChatUnreadCount)
	}
}
