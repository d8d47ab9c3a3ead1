package api

import (
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
)

// validateLatLng enforces spec.md §6: lat ∈ [-90, 90], lng ∈ [-180, 180].
func validateLatLng(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return dberrors.InvalidRequest("lat %f out of range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return dberrors.InvalidRequest("lng %f out of range [-180, 180]", lng)
	}
	return nil
}

// validateAperture enforces spec.md §6: aperture ∈ (0, 180] degrees.
func validateAperture(apertureDeg float64) error {
	if apertureDeg <= 0 || apertureDeg > 180 {
		return dberrors.InvalidRequest("aperture_degrees %f out of range (0, 180]", apertureDeg)
	}
	return nil
}

// validateRange enforces spec.md §6: range_meters ∈ (0, 10000].
func validateRange(rangeM float64) error {
	if rangeM <= 0 || rangeM > 10000 {
		return dberrors.InvalidRequest("range_meters %f out of range (0, 10000]", rangeM)
	}
	return nil
}
