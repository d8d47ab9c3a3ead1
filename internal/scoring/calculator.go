// Package scoring computes the Waypoint Quality Score (WQS): a 0-100
// estimate of how promising a waypoint is, blended from four weighted
// sub-scores over its recorded visit history.
package scoring

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/geo"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// Sub-score weights. Sum to 1.0.
const (
	weightSuccessHistory = 0.40
	weightWeather        = 0.25
	weightActivity       = 0.20
	weightAccessibility  = 0.15
)

// Defaults applied when a waypoint has no recorded visits, so a brand-new
// waypoint is never penalized for lack of history.
const (
	defaultSuccessHistoryScore = 50.0
	defaultWeatherScore        = 50.0
	defaultActivityScore       = 50.0
	defaultAccessibilityScore  = 40.0
)

// Classification band thresholds, evaluated top-down against TotalScore.
const (
	thresholdHotspot  = 75.0
	thresholdGood     = 55.0
	thresholdStandard = 35.0
)

const recentActivityWindowDays = 30
const recentAccessibilityWindowDays = 90

// nearbyRadiusKM is the "nearby trips" radius from spec.md §4.D step 1: a
// waypoint is scored from visits logged at any waypoint within this distance,
// not only visits logged at its own exact ID.
const nearbyRadiusKM = 0.5
const kmPerDegree = 111.0

// VisitSource supplies the visit history logged against a given waypoint. It
// is satisfied by trips.VisitRepository.GetVisitsByWaypoint.
type VisitSource interface {
	GetVisitsByWaypoint(ctx context.Context, waypointID string) ([]models.WaypointVisit, error)
}

// WaypointSource supplies the bounding-box prefilter used to resolve a
// waypoint's nearby neighbors before scoring. Satisfied by
// waypoints.Repository.GetNear.
type WaypointSource interface {
	GetNear(ctx context.Context, userID string, lat, lng, boxDegrees float64) ([]models.Waypoint, error)
}

// Calculator computes WQS values from visits recorded at a waypoint and its
// nearby neighbors.
type Calculator struct {
	waypoints WaypointSource
	visits    VisitSource
	now       func() time.Time
}

// New builds a Calculator over the given waypoint and visit sources.
func New(waypoints WaypointSource, visits VisitSource) *Calculator {
	return &Calculator{waypoints: waypoints, visits: visits, now: time.Now}
}

// Score computes the WQS for a single waypoint, drawing on visit history
// from every waypoint within nearbyRadiusKM (spec.md §4.D step 1), not just
// visits logged against waypoint.ID itself.
func (c *Calculator) Score(ctx context.Context, waypoint models.Waypoint) (models.WQS, error) {
	visits, err := c.nearbyVisits(ctx, waypoint)
	if err != nil {
		return models.WQS{}, err
	}

	wqs := models.WQS{
		WaypointID:   waypoint.ID,
		WaypointName: waypoint.Name,
	}

	successScore, totalVisits, successfulVisits, successRate, lastVisit := c.successHistoryScore(visits)
	wqs.SuccessHistoryScore = successScore
	wqs.TotalVisits = totalVisits
	wqs.SuccessfulVisits = successfulVisits
	wqs.SuccessRate = successRate
	wqs.LastVisit = lastVisit

	wqs.WeatherScore = c.weatherScore(visits)
	wqs.ActivityScore = c.activityScore(visits)
	wqs.AccessibilityScore = c.accessibilityScore(visits)

	wqs.TotalScore = weightSuccessHistory*wqs.SuccessHistoryScore +
		weightWeather*wqs.WeatherScore +
		weightActivity*wqs.ActivityScore +
		weightAccessibility*wqs.AccessibilityScore

	wqs.Classification = classify(wqs.TotalScore)
	return wqs, nil
}

// nearbyVisits collects every visit logged against waypoint itself or any
// other waypoint the same user owns within nearbyRadiusKM, using the same
// bounding-box-then-Haversine prefilter pattern as
// WaypointService.NearbyHotspots.
func (c *Calculator) nearbyVisits(ctx context.Context, waypoint models.Waypoint) ([]models.WaypointVisit, error) {
	boxDegrees := nearbyRadiusKM / kmPerDegree
	candidates, err := c.waypoints.GetNear(ctx, waypoint.UserID, waypoint.Lat, waypoint.Lng, boxDegrees)
	if err != nil {
		return nil, err
	}

	origin := geo.Point{Lat: waypoint.Lat, Lng: waypoint.Lng}
	radiusM := nearbyRadiusKM * 1000

	var all []models.WaypointVisit
	for _, wp := range candidates {
		if geo.Haversine(origin, geo.Point{Lat: wp.Lat, Lng: wp.Lng}) > radiusM {
			continue
		}
		visits, err := c.visits.GetVisitsByWaypoint(ctx, wp.ID)
		if err != nil {
			return nil, err
		}
		all = append(all, visits...)
	}
	return all, nil
}

func classify(score float64) models.Classification {
	switch {
	case score >= thresholdHotspot:
		return models.ClassificationHotspot
	case score >= thresholdGood:
		return models.ClassificationGood
	case score >= thresholdStandard:
		return models.ClassificationStandard
	default:
		return models.ClassificationWeak
	}
}

// successHistoryScore rewards a high success rate with a small bonus for
// sample volume, capped at 100. A waypoint with no visits gets the neutral
// default rather than 0, since absence of data is not evidence of failure.
func (c *Calculator) successHistoryScore(visits []models.WaypointVisit) (score float64, total, successful int, rate float64, lastVisit *time.Time) {
	if len(visits) == 0 {
		return defaultSuccessHistoryScore, 0, 0, 0.0, nil
	}

	total = len(visits)
	for _, v := range visits {
		if v.Success {
			successful++
		}
	}
	rate = float64(successful) / float64(total) * 100

	volumeBonus := math.Min(10, float64(total)*0.5)
	score = math.Min(100, rate+volumeBonus)

	latest := visits[0].ArrivalTime
	for _, v := range visits[1:] {
		if v.ArrivalTime.After(latest) {
			latest = v.ArrivalTime
		}
	}
	lastVisit = &latest
	return score, total, successful, rate, lastVisit
}

// weatherScore measures how well a waypoint performs under each observed
// weather condition relative to that condition's expected baseline success
// rate, then averages across conditions actually seen (unweighted by
// volume, so one lucky snowy trip does not drown out ten average sunny
// ones). Conditions are visited in a fixed, sorted order so the result does
// not depend on map iteration order.
func (c *Calculator) weatherScore(visits []models.WaypointVisit) float64 {
	byWeather := map[models.WeatherLabel]struct{ successes, total int }{}
	for _, v := range visits {
		if v.Weather == "" {
			continue
		}
		g := byWeather[v.Weather]
		g.total++
		if v.Success {
			g.successes++
		}
		byWeather[v.Weather] = g
	}

	if len(byWeather) == 0 {
		return defaultWeatherScore
	}

	labels := make([]string, 0, len(byWeather))
	for label := range byWeather {
		labels = append(labels, string(label))
	}
	sort.Strings(labels)

	var sum float64
	for _, label := range labels {
		g := byWeather[models.WeatherLabel(label)]
		rate := float64(g.successes) / float64(g.total)
		expected := expectedSuccessRate(models.WeatherLabel(label))
		sum += math.Min(100, (rate/math.Max(expected, 0.1))*50+25)
	}
	return sum / float64(len(labels))
}

// activityScore rewards waypoints where visits tend to produce
// observations, with a flat bonus for any visit in the last 30 days.
func (c *Calculator) activityScore(visits []models.WaypointVisit) float64 {
	if len(visits) == 0 {
		return defaultActivityScore
	}

	var totalObservations int
	recentlyActive := false
	cutoff := c.now().AddDate(0, 0, -recentActivityWindowDays)
	for _, v := range visits {
		totalObservations += v.ObservationsCount
		if v.ArrivalTime.After(cutoff) {
			recentlyActive = true
		}
	}

	avgObservations := float64(totalObservations) / float64(len(visits))
	score := math.Min(100, avgObservations*20)
	if recentlyActive {
		score = math.Min(100, score+10)
	}
	return score
}

// accessibilityScore rewards waypoints that are visited often and
// recently, on the theory that a spot hunters keep returning to is one
// they can reliably reach.
func (c *Calculator) accessibilityScore(visits []models.WaypointVisit) float64 {
	if len(visits) == 0 {
		return defaultAccessibilityScore
	}

	cutoff := c.now().AddDate(0, 0, -recentAccessibilityWindowDays)
	var recent int
	for _, v := range visits {
		if v.ArrivalTime.After(cutoff) {
			recent++
		}
	}

	frequencyScore := math.Min(50, float64(len(visits))*5)
	recencyScore := math.Min(50, float64(recent)*10)
	return frequencyScore + recencyScore
}
