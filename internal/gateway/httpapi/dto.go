package httpapi

import (
	"time"

	"github.com/cropdoctor/diagnosis-api/internal/model"
)

// diagnosisResponse mirrors the remote API's JSON shape.
type diagnosisResponse struct {
	DiagnosisID int     `json:"diagnosis_id"`
	FarmerID    *string `json:"farmer_id"`
	ImagePath   string  `json:"image_path"`
	AudioPath   *string `json:"audio_path"`
	Question    *string `json:"question"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Province  *string  `json:"province"`
	District  *string  `json:"district"`

	Temperature       *float64 `json:"temperature"`
	Humidity          *float64 `json:"humidity"`
	WeatherConditions *string  `json:"weather_conditions"`

	DiseaseDetected string   `json:"disease_detected"`
	Confidence      float64  `json:"confidence"`
	Severity        *string  `json:"severity"`
	FullResponse    string   `json:"full_response"`
	Treatments      []string `json:"treatment_suggestions"`
	PreventionTips  []string `json:"prevention_tips"`
	Symptoms        []string `json:"symptoms"`
	Causes          []string `json:"causes"`

	Status         string  `json:"status"`
	ExpertReviewed bool    `json:"expert_reviewed"`
	ExpertComment  *string `json:"expert_comment"`
	ExpertID       *string `json:"expert_id"`

	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

type historyResponse struct {
	Diagnoses []diagnosisResponse `json:"diagnoses"`
	Total     int                 `json:"total"`
	Offset    int                 `json:"offset"`
	Limit     int                 `json:"limit"`
}

func (r *diagnosisResponse) toModel() *model.Diagnosis {
	status := model.DiagnosisStatus(r.Status)
	if status == "" {
		status = model.StatusPending
	}

	d := &model.Diagnosis{
		ID:                r.DiagnosisID,
		FarmerID:          r.FarmerID,
		ImagePath:         r.ImagePath,
		AudioPath:         r.AudioPath,
		Question:          r.Question,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Province:          r.Province,
		District:          r.District,
		Temperature:       r.Temperature,
		Humidity:          r.Humidity,
		WeatherConditions: r.WeatherConditions,
		DiseaseDetected:   r.DiseaseDetected,
		Confidence:        r.Confidence,
		Severity:          r.Severity,
		FullResponse:      r.FullResponse,
		Status:            status,
		ExpertReviewed:    r.ExpertReviewed,
		ExpertComment:     r.ExpertComment,
		ExpertID:          r.ExpertID,
		CreatedAt:         parseWireTime(r.CreatedAt),
	}

	if r.UpdatedAt != nil {
		if t, err := time.ParseInLocation(wireTimeLayout, *r.UpdatedAt, time.UTC); err == nil {
			d.UpdatedAt = &t
		}
	}

	if len(r.Treatments) > 0 || len(r.PreventionTips) > 0 || len(r.Symptoms) > 0 || len(r.Causes) > 0 {
		d.Details = &model.DiagnosisDetails{
			TreatmentSuggestions: r.Treatments,
			PreventionTips:       r.PreventionTips,
			Symptoms:             r.Symptoms,
			Causes:               r.Causes,
		}
	}

	return d
}

// parseWireTime degrades to the current time instead of failing the whole
// response on an unparsable timestamp.
func parseWireTime(value string) time.Time {
	t, err := time.ParseInLocation(wireTimeLayout, value, time.UTC)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
