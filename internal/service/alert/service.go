// Package alert serves outbreak alerts and their geospatial queries. The
// alert set is an immutable snapshot; a feed refresh replaces it wholesale.
package alert

import (
	"context"
	"strings"
	"sync"

	"github.com/cropdoctor/diagnosis-api/internal/geo"
	"github.com/cropdoctor/diagnosis-api/internal/model"
)

type AlertService interface {
	List(ctx context.Context, severity *string) ([]model.OutbreakAlert, error)
	FilterByDisease(ctx context.Context, diseaseType string) ([]model.OutbreakAlert, error)
	// Nearby returns the alerts whose region contains the point, nearest
	// first.
	Nearby(ctx context.Context, lat, lon float64) ([]model.OutbreakAlert, error)
	// RankAll returns every active alert ordered by distance from the point.
	RankAll(ctx context.Context, lat, lon float64) ([]model.OutbreakAlert, error)
	Refresh(alerts []model.OutbreakAlert)
}

type Service struct {
	mu     sync.RWMutex
	alerts []model.OutbreakAlert
}

func NewService(alerts []model.OutbreakAlert) *Service {
	return &Service{alerts: alerts}
}

// Refresh replaces the whole alert set.
func (s *Service) Refresh(alerts []model.OutbreakAlert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = alerts
}

func (s *Service) List(_ context.Context, severity *string) ([]model.OutbreakAlert, error) {
	return geo.FilterBySeverity(s.snapshot(), severity), nil
}

func (s *Service) FilterByDisease(_ context.Context, diseaseType string) ([]model.OutbreakAlert, error) {
	needle := strings.ToLower(diseaseType)
	alerts := s.snapshot()
	filtered := make([]model.OutbreakAlert, 0, len(alerts))
	for _, a := range alerts {
		if strings.Contains(strings.ToLower(a.DiseaseType), needle) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

func (s *Service) Nearby(_ context.Context, lat, lon float64) ([]model.OutbreakAlert, error) {
	point := geo.Point{Lat: lat, Lon: lon}
	containing := make([]model.OutbreakAlert, 0)
	for _, a := range s.snapshot() {
		if geo.IsWithin(point, a) {
			containing = append(containing, a)
		}
	}
	return geo.RankByProximity(point, containing), nil
}

func (s *Service) RankAll(_ context.Context, lat, lon float64) ([]model.OutbreakAlert, error) {
	return geo.RankByProximity(geo.Point{Lat: lat, Lon: lon}, s.snapshot()), nil
}

func (s *Service) snapshot() []model.OutbreakAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := make([]model.OutbreakAlert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if a.Active {
			active = append(active, a)
		}
	}
	return active
}
