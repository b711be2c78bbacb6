// Package triage computes review-urgency classifications for diagnosis
// records from the AI confidence score and the expert-review state.
package triage

import (
	"fmt"
	"strings"

	"github.com/cropdoctor/diagnosis-api/internal/model"
	apperrors "github.com/cropdoctor/diagnosis-api/pkg/errors"
)

// ConfidenceLevel is a coarse confidence band.
type ConfidenceLevel string

const (
	LevelHigh   ConfidenceLevel = "HIGH"
	LevelMedium ConfidenceLevel = "MEDIUM"
	LevelLow    ConfidenceLevel = "LOW"
)

// SeverityClass is the display class for an outbreak or diagnosis severity
// tag. Unrecognized tags degrade to SeverityUnknown, never an error.
type SeverityClass string

const (
	SeverityHigh    SeverityClass = "high"
	SeverityMedium  SeverityClass = "medium"
	SeverityLow     SeverityClass = "low"
	SeverityUnknown SeverityClass = "unknown"
)

// Config holds the classification thresholds. The zero Config means
// "unconfigured" and selects DefaultConfig.
type Config struct {
	// HighThreshold is the inclusive lower bound of the HIGH band.
	HighThreshold float64 `mapstructure:"high_threshold"`
	// ReviewThreshold is the exclusive upper bound below which an
	// unreviewed record needs expert attention.
	ReviewThreshold float64 `mapstructure:"review_threshold"`
	// MediumThreshold is the inclusive lower bound of the MEDIUM band.
	MediumThreshold float64 `mapstructure:"medium_threshold"`
}

const (
	DefaultHighThreshold   = 0.80
	DefaultReviewThreshold = 0.70
	DefaultMediumThreshold = 0.50
)

// DefaultConfig returns the thresholds the policy was written against.
func DefaultConfig() Config {
	return Config{
		HighThreshold:   DefaultHighThreshold,
		ReviewThreshold: DefaultReviewThreshold,
		MediumThreshold: DefaultMediumThreshold,
	}
}

// Classifier is pure and stateless; all methods are safe for concurrent use.
type Classifier struct {
	cfg Config
}

// NewClassifier uses cfg as given; only the zero Config selects
// DefaultConfig, so a threshold of exactly 0 is honored whenever any other
// field is set.
func NewClassifier(cfg Config) *Classifier {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Classifier{cfg: cfg}
}

// NeedsReview reports whether a record with the given confidence and review
// flag needs expert attention. A reviewed record never does.
func (c *Classifier) NeedsReview(confidence float64, reviewed bool) bool {
	return confidence < c.cfg.ReviewThreshold && !reviewed
}

// NeedsReviewRecord is the record-level form of NeedsReview.
func (c *Classifier) NeedsReviewRecord(d *model.Diagnosis) bool {
	return c.NeedsReview(d.Confidence, d.ExpertReviewed)
}

// ConfidenceLevel maps a confidence fraction to its band. Band lower bounds
// are inclusive.
func (c *Classifier) ConfidenceLevel(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= c.cfg.HighThreshold:
		return LevelHigh
	case confidence >= c.cfg.MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// SeverityClassOf maps a severity tag case-insensitively onto its display
// class. Nil and unrecognized tags map to SeverityUnknown.
func (c *Classifier) SeverityClassOf(tag *string) SeverityClass {
	if tag == nil {
		return SeverityUnknown
	}
	switch strings.ToLower(*tag) {
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

// ValidateConfidence rejects confidence values outside [0,1]. Out-of-range
// values are a data-integrity error produced upstream, so they are reported
// once here rather than defended against in every query.
func ValidateConfidence(confidence float64) error {
	if confidence < 0 || confidence > 1 {
		return apperrors.NewValidation(
			fmt.Sprintf("confidence %v outside [0,1]", confidence), nil)
	}
	return nil
}
