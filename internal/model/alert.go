package model

import (
	"time"
)

// OutbreakAlert is a named circular geofence around a disease outbreak.
// A feed refresh replaces the whole set; alerts are immutable once received.
type OutbreakAlert struct {
	ID           int       `json:"id"`
	DiseaseType  string    `json:"disease_type"`
	Severity     string    `json:"severity"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusKm     float64   `json:"radius_km"`
	CaseCount    int       `json:"case_count"`
	AffectedArea string    `json:"affected_area"`
	Province     string    `json:"province,omitempty"`
	District     string    `json:"district,omitempty"`
	Description  string    `json:"description,omitempty"`
	ReportedAt   time.Time `json:"reported_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Active       bool      `json:"active"`
}
