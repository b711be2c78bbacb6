package alert

import (
	"time"

	"github.com/cropdoctor/diagnosis-api/internal/model"
)

// StaticFeed returns the bundled outbreak alert set for the Mekong Delta
// pilot provinces. It stands in for the remote alert feed until that service
// is live; Refresh swaps in real data without touching the query paths.
func StaticFeed() []model.OutbreakAlert {
	now := time.Now().UTC()
	return []model.OutbreakAlert{
		{
			ID:           1,
			DiseaseType:  "Rice blast",
			Severity:     "high",
			Latitude:     10.7051,
			Longitude:    105.1180,
			RadiusKm:     15.0,
			CaseCount:    45,
			AffectedArea: "Chau Doc",
			Province:     "An Giang",
			District:     "Chau Doc",
			Description:  "Rice blast spreading across paddy fields in the area.",
			ReportedAt:   now.Add(-24 * time.Hour),
			UpdatedAt:    now,
			Active:       true,
		},
		{
			ID:           2,
			DiseaseType:  "Bacterial leaf blight",
			Severity:     "medium",
			Latitude:     10.6481,
			Longitude:    105.5972,
			RadiusKm:     10.0,
			CaseCount:    28,
			AffectedArea: "Tam Nong",
			Province:     "Dong Thap",
			District:     "Tam Nong",
			Description:  "Leaf blight detected on rice crops in the district.",
			ReportedAt:   now.Add(-48 * time.Hour),
			UpdatedAt:    now,
			Active:       true,
		},
		{
			ID:           3,
			DiseaseType:  "Sheath blight",
			Severity:     "low",
			Latitude:     10.6703,
			Longitude:    105.1540,
			RadiusKm:     8.0,
			CaseCount:    12,
			AffectedArea: "Chau Thanh",
			Province:     "An Giang",
			District:     "Chau Thanh",
			Description:  "Scattered sheath blight reports from local farms.",
			ReportedAt:   now.Add(-72 * time.Hour),
			UpdatedAt:    now,
			Active:       true,
		},
		{
			ID:           4,
			DiseaseType:  "Rice leaf folder",
			Severity:     "high",
			Latitude:     10.4596,
			Longitude:    105.6327,
			RadiusKm:     12.0,
			CaseCount:    67,
			AffectedArea: "Cao Lanh",
			Province:     "Dong Thap",
			District:     "Cao Lanh",
			Description:  "Leaf folder outbreak causing heavy crop damage.",
			ReportedAt:   now.Add(-12 * time.Hour),
			UpdatedAt:    now,
			Active:       true,
		},
		{
			ID:           5,
			DiseaseType:  "Bacterial leaf streak",
			Severity:     "medium",
			Latitude:     10.3833,
			Longitude:    105.4358,
			RadiusKm:     10.0,
			CaseCount:    31,
			AffectedArea: "Long Xuyen",
			Province:     "An Giang",
			District:     "Long Xuyen",
			Description:  "Leaf streak appearing across a wide area.",
			ReportedAt:   now.Add(-96 * time.Hour),
			UpdatedAt:    now,
			Active:       true,
		},
	}
}
