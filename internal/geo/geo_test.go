package geo_test

import (
	"math"
	"testing"

	"github.com/steeveross-eng/huntiq-telemetry/internal/geo"
)

func TestHaversineSamePoint(t *testing.T) {
	p := geo.Point{Lat: 46.8139, Lng: -71.2080}
	if d := geo.Haversine(p, p); d != 0 {
		t.Errorf("Haversine(p, p) = %v, want 0", d)
	}
}

func TestHaversineDestinationRoundTrip(t *testing.T) {
	apex := geo.Point{Lat: 46.8139, Lng: -71.2080}
	cases := []struct {
		bearing, dist float64
	}{
		{0, 100}, {45, 500}, {90, 1500}, {180, 5000}, {270, 1},
	}
	for _, c := range cases {
		dest := geo.Destination(apex, c.bearing, c.dist)
		got := geo.Haversine(apex, dest)
		if math.Abs(got-c.dist) > 0.5 {
			t.Errorf("bearing=%v dist=%v: haversine round-trip = %v, want ~%v", c.bearing, c.dist, got, c.dist)
		}
	}
}

func TestPointInConeContainment(t *testing.T) {
	apex := geo.Point{Lat: 46.8, Lng: -71.2}
	heading := 0.0
	aperture := 60.0
	rangeM := 500.0

	deltas := []float64{-29, -10, 0, 10, 29}
	for _, d := range deltas {
		p := geo.Destination(apex, heading+d, 300)
		res := geo.PointInCone(apex, heading, aperture, rangeM, p)
		if !res.In {
			t.Errorf("delta=%v: expected point inside cone, got outside (dist=%v angle=%v)", d, res.DistanceM, res.RelativeAngle)
		}
	}
}

func TestPointInConeExcludesOutsideAperture(t *testing.T) {
	apex := geo.Point{Lat: 46.8, Lng: -71.2}
	p := geo.Destination(apex, 40, 300)
	res := geo.PointInCone(apex, 0, 60, 500, p)
	if res.In {
		t.Errorf("point at bearing 40 with 60deg aperture should be outside, got inside")
	}
}

func TestPointInConeExcludesBeyondRange(t *testing.T) {
	apex := geo.Point{Lat: 46.8, Lng: -71.2}
	p := geo.Destination(apex, 0, 600)
	res := geo.PointInCone(apex, 0, 60, 500, p)
	if res.In {
		t.Errorf("point beyond range should be outside cone")
	}
}

func TestNormalizeRelativeAngleWrapsAtMeridian(t *testing.T) {
	got := geo.NormalizeRelativeAngle(190)
	if got != -170 {
		t.Errorf("NormalizeRelativeAngle(190) = %v, want -170", got)
	}
	got = geo.NormalizeRelativeAngle(-190)
	if got != 170 {
		t.Errorf("NormalizeRelativeAngle(-190) = %v, want 170", got)
	}
	got = geo.NormalizeRelativeAngle(180)
	if got != 180 {
		t.Errorf("NormalizeRelativeAngle(180) = %v, want 180", got)
	}
}

func TestInitialBearingNorth(t *testing.T) {
	a := geo.Point{Lat: 0, Lng: 0}
	b := geo.Point{Lat: 1, Lng: 0}
	got := geo.InitialBearing(a, b)
	if math.Abs(got-0) > 0.01 {
		t.Errorf("InitialBearing due north = %v, want ~0", got)
	}
}
