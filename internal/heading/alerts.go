package heading

import (
	"fmt"
	"sort"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// maxUnacknowledgedAlerts bounds how many unacknowledged alerts a session
// retains after each synthesis pass (spec.md §4.H step 7: "trimming to the
// most recent 5 unacknowledged alerts"). Acknowledged alerts are not
// subject to this cap.
const maxUnacknowledgedAlerts = 5

// poiNearbyDistanceM and poiNearbyMinPriority gate which visible POIs are
// worth surfacing as a poi_nearby alert (spec.md §4.H alert synthesis).
const (
	poiNearbyDistanceM     = 100.0
	poiNearbyMinPriority   = 8
	poiNearbyCandidateScan = 3
)

// synthesizeAlerts computes the new alerts a position/wind/visibility
// update should raise, given the session's existing alert set, and returns
// the full alert list with those additions applied and trimmed.
func synthesizeAlerts(existing []models.HeadingAlert, wind *models.Wind, visible []models.POI, now time.Time, newID func() string) []models.HeadingAlert {
	alerts := existing

	if wind != nil && !wind.Favorable && !hasUnacknowledged(alerts, "wind_change") {
		alerts = append(alerts, models.HeadingAlert{
			ID:        newID(),
			AlertType: "wind_change",
			Priority:  models.AlertPriorityHigh,
			Title:     "Wind shift",
			Message:   "Wind conditions have turned unfavorable for this position.",
			CreatedAt: now,
		})
	}

	scanned := 0
	for _, poi := range visible {
		if scanned >= poiNearbyCandidateScan {
			break
		}
		scanned++
		if poi.DistanceM >= poiNearbyDistanceM || poi.Priority < poiNearbyMinPriority {
			continue
		}
		if hasUnacknowledgedPOI(alerts, poi.Name) {
			continue
		}
		alerts = append(alerts, models.HeadingAlert{
			ID:        newID(),
			AlertType: "poi_nearby",
			Priority:  models.AlertPriorityMedium,
			Title:     "Nearby point of interest",
			Message:   fmt.Sprintf("'%s' is %.0fm away.", poi.Name, poi.DistanceM),
			CreatedAt: now,
		})
	}

	return trimUnacknowledged(alerts)
}

func hasUnacknowledged(alerts []models.HeadingAlert, alertType string) bool {
	for _, a := range alerts {
		if a.AlertType == alertType && !a.Acknowledged {
			return true
		}
	}
	return false
}

func hasUnacknowledgedPOI(alerts []models.HeadingAlert, poiName string) bool {
	want := fmt.Sprintf("'%s' is", poiName)
	for _, a := range alerts {
		if a.AlertType == "poi_nearby" && !a.Acknowledged && len(a.Message) >= len(want) && a.Message[:len(want)] == want {
			return true
		}
	}
	return false
}

// trimUnacknowledged keeps every acknowledged alert plus at most the 5
// most recently created unacknowledged alerts, preserving creation order.
func trimUnacknowledged(alerts []models.HeadingAlert) []models.HeadingAlert {
	var unacknowledged []models.HeadingAlert
	for _, a := range alerts {
		if !a.Acknowledged {
			unacknowledged = append(unacknowledged, a)
		}
	}
	if len(unacknowledged) <= maxUnacknowledgedAlerts {
		return alerts
	}

	sort.SliceStable(unacknowledged, func(i, j int) bool {
		return unacknowledged[i].CreatedAt.After(unacknowledged[j].CreatedAt)
	})
	keepUnacknowledged := make(map[string]bool, maxUnacknowledgedAlerts)
	for _, a := range unacknowledged[:maxUnacknowledgedAlerts] {
		keepUnacknowledged[a.ID] = true
	}

	var out []models.HeadingAlert
	for _, a := range alerts {
		if a.Acknowledged || keepUnacknowledged[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
