// Package geo computes proximity relations between a point and the circular
// regions of outbreak alerts.
package geo

import (
	"math"
	"sort"
	"strings"

	"github.com/cropdoctor/diagnosis-api/internal/model"
)

// EarthRadiusKm is the spherical-Earth approximation used by the haversine
// distance.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// DistanceKm returns the great-circle distance between two points via the
// haversine formula.
func DistanceKm(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Pow(math.Sin(dLon/2), 2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// Center returns the alert's geofence center.
func Center(a model.OutbreakAlert) Point {
	return Point{Lat: a.Latitude, Lon: a.Longitude}
}

// IsWithin reports whether the point lies inside the alert's radius. The
// boundary is inclusive.
func IsWithin(p Point, a model.OutbreakAlert) bool {
	return DistanceKm(p, Center(a)) <= a.RadiusKm
}

// RankByProximity returns the alerts ordered by ascending distance from the
// point. Ties break by id ascending so the ordering is deterministic. The
// input slice is not modified.
func RankByProximity(p Point, alerts []model.OutbreakAlert) []model.OutbreakAlert {
	ranked := append([]model.OutbreakAlert(nil), alerts...)
	sort.SliceStable(ranked, func(i, j int) bool {
		di := DistanceKm(p, Center(ranked[i]))
		dj := DistanceKm(p, Center(ranked[j]))
		if di != dj {
			return di < dj
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// FilterBySeverity returns the alerts whose severity tag matches exactly,
// ignoring case. A nil filter returns the input unchanged.
func FilterBySeverity(alerts []model.OutbreakAlert, severity *string) []model.OutbreakAlert {
	if severity == nil {
		return alerts
	}
	filtered := make([]model.OutbreakAlert, 0, len(alerts))
	for _, a := range alerts {
		if strings.EqualFold(a.Severity, *severity) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
