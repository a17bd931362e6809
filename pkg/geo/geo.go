// Package geo provides geographic utility functions for the mandi directory.
//
// All distance calculations use the Haversine formula on WGS-84 coordinates.
// Good enough for market-to-market comparisons; swap with a road-routing
// engine if door-to-door accuracy ever matters.
package geo

import (
	"math"

	"github.com/kisanlink/agrimandi/internal/model"
)

// ─── Constants ──────────────────────────────────────────────

const (
	// EarthRadiusKm is the mean radius of Earth in kilometers.
	EarthRadiusKm = 6371.0

	// EarthRadiusM is the mean radius of Earth in meters.
	EarthRadiusM = 6_371_000.0
)

// ─── Distance ───────────────────────────────────────────────

// HaversineKm returns the great-circle distance between two points in kilometers.
//
// Complexity: O(1)
func HaversineKm(a, b model.Location) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLon*sinLon

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// HaversineM returns the great-circle distance between two points in meters.
func HaversineM(a, b model.Location) float64 {
	return HaversineKm(a, b) * 1000.0
}

// DistanceKm returns the distance between a source point and an optional
// destination. The second return is false when the destination has no
// recorded coordinates — callers must treat that as "distance unknown",
// not as zero.
func DistanceKm(src model.Location, dst *model.Location) (float64, bool) {
	if dst == nil {
		return 0, false
	}
	return HaversineKm(src, *dst), true
}

// ─── Helpers ────────────────────────────────────────────────

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
