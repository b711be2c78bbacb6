package alert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropdoctor/diagnosis-api/internal/model"
)

func testAlerts() []model.OutbreakAlert {
	return []model.OutbreakAlert{
		{ID: 1, DiseaseType: "Rice blast", Severity: "high", Latitude: 10.7051, Longitude: 105.1180, RadiusKm: 15, Active: true},
		{ID: 2, DiseaseType: "Bacterial leaf blight", Severity: "medium", Latitude: 10.6481, Longitude: 105.5972, RadiusKm: 10, Active: true},
		{ID: 3, DiseaseType: "Sheath blight", Severity: "low", Latitude: 10.6703, Longitude: 105.1540, RadiusKm: 8, Active: true},
		{ID: 4, DiseaseType: "Rice leaf folder", Severity: "high", Latitude: 10.4596, Longitude: 105.6327, RadiusKm: 12, Active: false},
	}
}

func TestListSkipsInactive(t *testing.T) {
	svc := NewService(testAlerts())

	alerts, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, alerts, 3)
	for _, a := range alerts {
		assert.True(t, a.Active)
	}
}

func TestListFiltersBySeverity(t *testing.T) {
	svc := NewService(testAlerts())

	severity := "HIGH"
	alerts, err := svc.List(context.Background(), &severity)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 1, alerts[0].ID)
}

func TestFilterByDiseaseSubstring(t *testing.T) {
	svc := NewService(testAlerts())

	alerts, err := svc.FilterByDisease(context.Background(), "blight")
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, 2, alerts[0].ID)
	assert.Equal(t, 3, alerts[1].ID)
}

func TestNearbyOnlyContainingRegions(t *testing.T) {
	svc := NewService(testAlerts())

	// close to alert 1; alert 3 is ~5.6km away so its 8km radius also
	// contains the point, alert 2 does not
	alerts, err := svc.Nearby(context.Background(), 10.7051, 105.1180)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, 1, alerts[0].ID, "nearest first")
	assert.Equal(t, 3, alerts[1].ID)
}

func TestNearbyOutsideAllRegions(t *testing.T) {
	svc := NewService(testAlerts())

	alerts, err := svc.Nearby(context.Background(), 21.0278, 105.8342) // Hanoi
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestRankAllOrdersByDistance(t *testing.T) {
	svc := NewService(testAlerts())

	alerts, err := svc.RankAll(context.Background(), 10.7051, 105.1180)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, 1, alerts[0].ID)
	assert.Equal(t, 3, alerts[1].ID)
	assert.Equal(t, 2, alerts[2].ID)
}

func TestRefreshReplacesSet(t *testing.T) {
	svc := NewService(testAlerts())

	svc.Refresh([]model.OutbreakAlert{
		{ID: 9, DiseaseType: "Brown planthopper", Severity: "high", Active: true},
	})

	alerts, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 9, alerts[0].ID)
}

func TestStaticFeedIsActive(t *testing.T) {
	feed := StaticFeed()
	require.Len(t, feed, 5)
	for _, a := range feed {
		assert.True(t, a.Active)
		assert.NotEmpty(t, a.DiseaseType)
		assert.Positive(t, a.RadiusKm)
	}
}
