package scoring

import "github.com/steeveross-eng/huntiq-telemetry/internal/models"

// expectedSuccessRates is the baseline success rate a hunt "should" achieve
// under each weather condition, independent of waypoint. The weather
// sub-score measures how a waypoint's observed rate compares to this
// baseline rather than scoring raw success rate, so a waypoint that only
// ever gets hunted in poor conditions isn't penalized for the weather
// itself. Cloudy is the best baseline condition; unrecognized labels fall
// back to a neutral 0.5 in expectedSuccessRate.
var expectedSuccessRates = map[models.WeatherLabel]float64{
	models.WeatherSunny:  0.75,
	models.WeatherCloudy: 0.85,
	models.WeatherRainy:  0.45,
	models.WeatherFoggy:  0.65,
	models.WeatherSnowy:  0.55,
}

func expectedSuccessRate(label models.WeatherLabel) float64 {
	if rate, ok := expectedSuccessRates[label]; ok {
		return rate
	}
	return 0.5
}
