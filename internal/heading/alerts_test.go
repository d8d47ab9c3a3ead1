package heading

import (
	"fmt"
	"testing"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

func idSeq() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("alert-%d", n)
	}
}

func TestSynthesizeAlertsRaisesWindChangeOnce(t *testing.T) {
	now := time.Now()
	wind := &models.Wind{Favorable: false}

	alerts := synthesizeAlerts(nil, wind, nil, now, idSeq())
	if len(alerts) != 1 || alerts[0].AlertType != "wind_change" {
		t.Fatalf("alerts = %+v, want one wind_change alert", alerts)
	}

	again := synthesizeAlerts(alerts, wind, nil, now, idSeq())
	if len(again) != 1 {
		t.Errorf("len(again) = %d, want 1 (no duplicate wind_change while unacknowledged)", len(again))
	}
}

func TestSynthesizeAlertsRaisesWindChangeAgainAfterAcknowledged(t *testing.T) {
	now := time.Now()
	wind := &models.Wind{Favorable: false}
	existing := []models.HeadingAlert{{ID: "a1", AlertType: "wind_change", Acknowledged: true, CreatedAt: now}}

	alerts := synthesizeAlerts(existing, wind, nil, now, idSeq())
	count := 0
	for _, a := range alerts {
		if a.AlertType == "wind_change" && !a.Acknowledged {
			count++
		}
	}
	if count != 1 {
		t.Errorf("unacknowledged wind_change count = %d, want 1", count)
	}
}

func TestSynthesizeAlertsPOINearbyOnlyForHighPriorityClosePOIs(t *testing.T) {
	now := time.Now()
	visible := []models.POI{
		{Name: "Hotspot stand", DistanceM: 50, Priority: 9},
		{Name: "Far hotspot", DistanceM: 150, Priority: 9},
		{Name: "Close low priority", DistanceM: 50, Priority: 3},
	}

	alerts := synthesizeAlerts(nil, nil, visible, now, idSeq())
	if len(alerts) != 1 {
		t.Fatalf("len(alerts) = %d, want 1, got %+v", len(alerts), alerts)
	}
	if alerts[0].AlertType != "poi_nearby" {
		t.Errorf("alert type = %s, want poi_nearby", alerts[0].AlertType)
	}
}

func TestTrimUnacknowledgedKeepsMostRecentFiveAndAllAcknowledged(t *testing.T) {
	base := time.Now()
	var alerts []models.HeadingAlert
	for i := 0; i < 8; i++ {
		alerts = append(alerts, models.HeadingAlert{
			ID:        fmt.Sprintf("u%d", i),
			AlertType: "poi_nearby",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	alerts = append(alerts, models.HeadingAlert{ID: "ack", Acknowledged: true, CreatedAt: base})

	trimmed := trimUnacknowledged(alerts)

	var unacknowledged, acknowledged int
	for _, a := range trimmed {
		if a.Acknowledged {
			acknowledged++
		} else {
			unacknowledged++
		}
	}
	if unacknowledged != maxUnacknowledgedAlerts {
		t.Errorf("unacknowledged count = %d, want %d", unacknowledged, maxUnacknowledgedAlerts)
	}
	if acknowledged != 1 {
		t.Errorf("acknowledged count = %d, want 1", acknowledged)
	}

	want := map[string]bool{"u3": true, "u4": true, "u5": true, "u6": true, "u7": true}
	for _, a := range trimmed {
		if !a.Acknowledged && !want[a.ID] {
			t.Errorf("unexpected surviving alert id %s", a.ID)
		}
	}
}
