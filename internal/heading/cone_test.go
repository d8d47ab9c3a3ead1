package heading

import (
	"math"
	"testing"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

func TestGenerateVerticesIncludesApexPlusArc(t *testing.T) {
	apex := models.Position{Lat: 46.8, Lng: -71.2}
	vertices := GenerateVertices(apex, 90, 60, 500)

	if len(vertices) != coneArcPoints+1 {
		t.Fatalf("len(vertices) = %d, want %d", len(vertices), coneArcPoints+1)
	}
	if vertices[0] != apex {
		t.Errorf("vertices[0] = %+v, want apex %+v", vertices[0], apex)
	}
	for i, v := range vertices[1:] {
		if v.Heading < 0 || v.Heading >= 360 {
			t.Errorf("vertex %d heading %f out of [0,360)", i+1, v.Heading)
		}
	}
}

func TestGenerateVerticesSpansAperture(t *testing.T) {
	apex := models.Position{Lat: 0, Lng: 0}
	vertices := GenerateVertices(apex, 0, 60, 500)

	first := vertices[1].Heading
	last := vertices[len(vertices)-1].Heading
	// Heading 0 - 30 wraps to 330.
	if math.Abs(first-330) > 0.01 {
		t.Errorf("first arc heading = %f, want ~330", first)
	}
	if math.Abs(last-30) > 0.01 {
		t.Errorf("last arc heading = %f, want ~30", last)
	}
}
