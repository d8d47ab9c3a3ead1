package heading

import (
	"math"

	"github.com/steeveross-eng/huntiq-telemetry/internal/geo"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// coneArcPoints is N, the number of arc vertices generated per view cone
// (spec.md §4.H: "N = 9 arc points").
const coneArcPoints = 9

// GenerateVertices builds a view cone's polygon: the apex, followed by N
// arc points stepped linearly from heading-aperture/2 to heading+aperture/2
// at rangeM, each computed via geo.Destination.
func GenerateVertices(apex models.Position, headingDeg, apertureDeg, rangeM float64) []models.Position {
	vertices := make([]models.Position, 0, coneArcPoints+1)
	vertices = append(vertices, apex)

	start := headingDeg - apertureDeg/2
	step := apertureDeg / float64(coneArcPoints-1)

	apexPoint := geo.Point{Lat: apex.Lat, Lng: apex.Lng}
	for i := 0; i < coneArcPoints; i++ {
		bearing := math.Mod(start+step*float64(i)+360, 360)
		dest := geo.Destination(apexPoint, bearing, rangeM)
		vertices = append(vertices, models.Position{Lat: dest.Lat, Lng: dest.Lng, Heading: bearing})
	}
	return vertices
}
