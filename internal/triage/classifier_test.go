package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/cropdoctor/diagnosis-api/pkg/errors"
)

func TestNeedsReview(t *testing.T) {
	c := NewClassifier(Config{})

	tests := []struct {
		name       string
		confidence float64
		reviewed   bool
		want       bool
	}{
		{"low confidence unreviewed", 0.45, false, true},
		{"just below threshold", 0.6999, false, true},
		{"at threshold", 0.70, false, false},
		{"above threshold", 0.95, false, false},
		{"low confidence but reviewed", 0.45, true, false},
		{"zero confidence reviewed", 0.0, true, false},
		{"zero confidence unreviewed", 0.0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.NeedsReview(tt.confidence, tt.reviewed))
		})
	}
}

func TestConfidenceLevelBoundaries(t *testing.T) {
	c := NewClassifier(Config{})

	tests := []struct {
		confidence float64
		want       ConfidenceLevel
	}{
		{1.0, LevelHigh},
		{0.80, LevelHigh},
		{0.7999, LevelMedium},
		{0.50, LevelMedium},
		{0.4999, LevelLow},
		{0.0, LevelLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.ConfidenceLevel(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestConfidenceLevelCustomThresholds(t *testing.T) {
	c := NewClassifier(Config{HighThreshold: 0.9, ReviewThreshold: 0.6, MediumThreshold: 0.4})

	assert.Equal(t, LevelMedium, c.ConfidenceLevel(0.85))
	assert.Equal(t, LevelHigh, c.ConfidenceLevel(0.9))
	assert.Equal(t, LevelLow, c.ConfidenceLevel(0.39))
	assert.True(t, c.NeedsReview(0.59, false))
	assert.False(t, c.NeedsReview(0.61, false))
}

func TestZeroThresholdIsConfigurable(t *testing.T) {
	// review threshold of exactly 0 disables the queue entirely
	c := NewClassifier(Config{HighThreshold: 0.9, ReviewThreshold: 0, MediumThreshold: 0.4})

	assert.False(t, c.NeedsReview(0.01, false))
	assert.False(t, c.NeedsReview(0.0, false))
}

func TestZeroConfigSelectsDefaults(t *testing.T) {
	assert.Equal(t, DefaultConfig(), NewClassifier(Config{}).cfg)
	assert.Equal(t, DefaultReviewThreshold, DefaultConfig().ReviewThreshold)
}

func TestSeverityClassOf(t *testing.T) {
	c := NewClassifier(Config{})

	high := "HIGH"
	medium := "Medium"
	low := "low"
	bogus := "catastrophic"

	assert.Equal(t, SeverityHigh, c.SeverityClassOf(&high))
	assert.Equal(t, SeverityMedium, c.SeverityClassOf(&medium))
	assert.Equal(t, SeverityLow, c.SeverityClassOf(&low))
	assert.Equal(t, SeverityUnknown, c.SeverityClassOf(&bogus))
	assert.Equal(t, SeverityUnknown, c.SeverityClassOf(nil))
}

func TestValidateConfidence(t *testing.T) {
	assert.NoError(t, ValidateConfidence(0))
	assert.NoError(t, ValidateConfidence(0.5))
	assert.NoError(t, ValidateConfidence(1))

	err := ValidateConfidence(1.01)
	assert.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))

	assert.Error(t, ValidateConfidence(-0.01))
}
