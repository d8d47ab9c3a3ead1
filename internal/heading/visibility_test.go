package heading

import (
	"testing"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

func TestFilterVisibleOrdersByDistanceAndExcludesOutOfCone(t *testing.T) {
	apex := models.Position{Lat: 46.8, Lng: -71.2, Heading: 0}

	candidates := []models.POI{
		{ID: "far", Name: "Far stand", Lat: 46.8036, Lng: -71.2}, // ~400m north, in cone
		{ID: "near", Name: "Near stand", Lat: 46.8009, Lng: -71.2}, // ~100m north, in cone
		{ID: "behind", Name: "Behind", Lat: 46.7991, Lng: -71.2},   // south, outside a north-facing cone
	}

	visible := FilterVisible(apex, 0, 60, 500, candidates)

	if len(visible) != 2 {
		t.Fatalf("len(visible) = %d, want 2", len(visible))
	}
	if visible[0].ID != "near" || visible[1].ID != "far" {
		t.Errorf("order = [%s, %s], want [near, far]", visible[0].ID, visible[1].ID)
	}
	if !visible[0].VisibleInCone {
		t.Error("expected VisibleInCone to be set")
	}
}

func TestFilterVisibleCapsCandidatesAndResults(t *testing.T) {
	apex := models.Position{Lat: 0, Lng: 0, Heading: 0}

	candidates := make([]models.POI, 0, maxCandidatePOIs+10)
	for i := 0; i < maxCandidatePOIs+10; i++ {
		candidates = append(candidates, models.POI{ID: "p", Lat: 0.001, Lng: 0})
	}

	visible := FilterVisible(apex, 0, 360, 50000, candidates)
	if len(visible) > maxVisiblePOIs {
		t.Errorf("len(visible) = %d, want <= %d", len(visible), maxVisiblePOIs)
	}
}
