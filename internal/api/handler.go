// Package api wires the HTTP surface (spec.md §6) onto the service layer:
// tracking, trips, waypoint scoring, heading sessions, group position
// sharing, and chat, plus the realtime WebSocket fanout that pushes the
// same updates to subscribed clients.
package api

import (
	"github.com/steeveross-eng/huntiq-telemetry/internal/chat"
	"github.com/steeveross-eng/huntiq-telemetry/internal/database/alerts"
	"github.com/steeveross-eng/huntiq-telemetry/internal/external"
	"github.com/steeveross-eng/huntiq-telemetry/internal/groupshare"
	"github.com/steeveross-eng/huntiq-telemetry/internal/heading"
	"github.com/steeveross-eng/huntiq-telemetry/internal/realtime"
	"github.com/steeveross-eng/huntiq-telemetry/internal/service"
)

// Handler groups the services and collaborators exposed over HTTP.
type Handler struct {
	tracking      *service.TrackingService
	trips         *service.TripService
	waypoints     *service.WaypointService
	heading       *heading.Registry
	groupshare    *groupshare.Service
	chat          *chat.Journal
	hub           *realtime.Hub
	subscriptions alerts.SubscriptionRepository
	authorizer    external.Authorizer
}

// NewHandler builds a Handler from its service dependencies.
func NewHandler(
	tracking *service.TrackingService,
	trips *service.TripService,
	waypoints *service.WaypointService,
	headingRegistry *heading.Registry,
	groupshareService *groupshare.Service,
	chatJournal *chat.Journal,
	hub *realtime.Hub,
	subscriptions alerts.SubscriptionRepository,
	authorizer external.Authorizer,
) *Handler {
	return &Handler{
		tracking:      tracking,
		trips:         trips,
		waypoints:     waypoints,
		heading:       headingRegistry,
		groupshare:    groupshareService,
		chat:          chatJournal,
		hub:           hub,
		subscriptions: subscriptions,
		authorizer:    authorizer,
	}
}
