package heading

import (
	"sort"

	"github.com/steeveross-eng/huntiq-telemetry/internal/geo"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// maxCandidatePOIs bounds how many candidates the visibility filter
// considers per call (spec.md §4.I step 1).
const maxCandidatePOIs = 100

// maxVisiblePOIs bounds the returned, sorted visible set (spec.md §4.I step 4).
const maxVisiblePOIs = 20

// FilterVisible returns the subset of candidates inside the circular
// sector anchored at apex, pointing along headingDeg with the given
// aperture/range, annotated with cone geometry and sorted by ascending
// distance. Ties preserve input order (sort.SliceStable).
func FilterVisible(apex models.Position, headingDeg, apertureDeg, rangeM float64, candidates []models.POI) []models.POI {
	if len(candidates) > maxCandidatePOIs {
		candidates = candidates[:maxCandidatePOIs]
	}

	apexPoint := geo.Point{Lat: apex.Lat, Lng: apex.Lng}
	var visible []models.POI
	for _, poi := range candidates {
		result := geo.PointInCone(apexPoint, headingDeg, apertureDeg, rangeM, geo.Point{Lat: poi.Lat, Lng: poi.Lng})
		if !result.In {
			continue
		}
		poi.VisibleInCone = true
		poi.DistanceM = result.DistanceM
		poi.Bearing = geo.InitialBearing(apexPoint, geo.Point{Lat: poi.Lat, Lng: poi.Lng})
		poi.RelativeAngle = result.RelativeAngle
		visible = append(visible, poi)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].DistanceM < visible[j].DistanceM
	})

	if len(visible) > maxVisiblePOIs {
		visible = visible[:maxVisiblePOIs]
	}
	return visible
}
