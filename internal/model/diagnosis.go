package model

import (
	"time"
)

// DiagnosisStatus is the expert-review status of a record.
type DiagnosisStatus string

const (
	StatusPending   DiagnosisStatus = "pending"
	StatusConfirmed DiagnosisStatus = "confirmed"
	StatusCorrected DiagnosisStatus = "corrected"
	StatusRejected  DiagnosisStatus = "rejected"
)

// DiagnosisDetails holds the optional structured part of the AI result.
type DiagnosisDetails struct {
	TreatmentSuggestions []string `json:"treatment_suggestions,omitempty"`
	PreventionTips       []string `json:"prevention_tips,omitempty"`
	Symptoms             []string `json:"symptoms,omitempty"`
	Causes               []string `json:"causes,omitempty"`
}

// Diagnosis is a single crop-disease diagnosis with its inputs, the AI result
// and the expert-review state. The id is assigned by the remote service on
// creation and is immutable afterwards.
type Diagnosis struct {
	ID       int     `json:"id" db:"id"`
	FarmerID *string `json:"farmer_id,omitempty" db:"farmer_id"`

	// Inputs
	ImagePath string  `json:"image_path" db:"image_path"`
	AudioPath *string `json:"audio_path,omitempty" db:"audio_path"`
	Question  *string `json:"question,omitempty" db:"question"`

	// Location
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
	Province  *string  `json:"province,omitempty" db:"province"`
	District  *string  `json:"district,omitempty" db:"district"`

	// Ambient context
	Temperature       *float64 `json:"temperature,omitempty" db:"temperature"`
	Humidity          *float64 `json:"humidity,omitempty" db:"humidity"`
	WeatherConditions *string  `json:"weather_conditions,omitempty" db:"weather_conditions"`

	// AI result. Confidence is a fraction in [0,1], never a percentage.
	DiseaseDetected string            `json:"disease_detected" db:"disease_detected"`
	Confidence      float64           `json:"confidence" db:"confidence"`
	Severity        *string           `json:"severity,omitempty" db:"severity"`
	FullResponse    string            `json:"full_response" db:"full_response"`
	Details         *DiagnosisDetails `json:"details,omitempty" db:"-"`

	// Expert review
	Status         DiagnosisStatus `json:"status" db:"status"`
	ExpertReviewed bool            `json:"expert_reviewed" db:"expert_reviewed"`
	ExpertComment  *string         `json:"expert_comment,omitempty" db:"expert_comment"`
	ExpertID       *string         `json:"expert_id,omitempty" db:"expert_id"`

	// Timestamps
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`

	// LocallyDirty marks a local copy that may not match the remote copy,
	// e.g. a snapshot saved while offline.
	LocallyDirty bool `json:"locally_dirty" db:"locally_dirty"`
}

// Clone returns a deep copy so cached records cannot be mutated through
// aliasing by callers.
func (d *Diagnosis) Clone() *Diagnosis {
	if d == nil {
		return nil
	}
	out := *d
	out.FarmerID = clonePtr(d.FarmerID)
	out.AudioPath = clonePtr(d.AudioPath)
	out.Question = clonePtr(d.Question)
	out.Latitude = clonePtr(d.Latitude)
	out.Longitude = clonePtr(d.Longitude)
	out.Province = clonePtr(d.Province)
	out.District = clonePtr(d.District)
	out.Temperature = clonePtr(d.Temperature)
	out.Humidity = clonePtr(d.Humidity)
	out.WeatherConditions = clonePtr(d.WeatherConditions)
	out.Severity = clonePtr(d.Severity)
	out.ExpertComment = clonePtr(d.ExpertComment)
	out.ExpertID = clonePtr(d.ExpertID)
	out.UpdatedAt = clonePtr(d.UpdatedAt)
	if d.Details != nil {
		details := DiagnosisDetails{
			TreatmentSuggestions: append([]string(nil), d.Details.TreatmentSuggestions...),
			PreventionTips:       append([]string(nil), d.Details.PreventionTips...),
			Symptoms:             append([]string(nil), d.Details.Symptoms...),
			Causes:               append([]string(nil), d.Details.Causes...),
		}
		out.Details = &details
	}
	return &out
}

// LocationDisplay renders the administrative location, district first.
func (d *Diagnosis) LocationDisplay() string {
	switch {
	case d.Province != nil && d.District != nil:
		return *d.District + ", " + *d.Province
	case d.Province != nil:
		return *d.Province
	default:
		return ""
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CreateDiagnosisRequest carries the inputs for a new diagnosis submission.
type CreateDiagnosisRequest struct {
	ImagePath         string   `json:"image_path" validate:"required"`
	Question          *string  `json:"question,omitempty"`
	AudioPath         *string  `json:"audio_path,omitempty"`
	FarmerID          *string  `json:"farmer_id,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude         *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Province          *string  `json:"province,omitempty"`
	District          *string  `json:"district,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	Humidity          *float64 `json:"humidity,omitempty" validate:"omitempty,gte=0,lte=100"`
	WeatherConditions *string  `json:"weather_conditions,omitempty"`
}
