package repository

import (
	"context"
	"errors"

	"github.com/cropdoctor/diagnosis-api/internal/model"
)

// ErrNotFound is returned by GetByID when no record exists for the id.
var ErrNotFound = errors.New("record not found")

// RecordStore is the durable local cache of diagnosis records, keyed by the
// server-assigned id. Implementations must support concurrent reads with
// serialized writes per id; records are independent, so no cross-id locking
// is required.
type RecordStore interface {
	// Upsert inserts or replaces a record by id.
	Upsert(ctx context.Context, record *model.Diagnosis) error
	// UpsertMany upserts each record; calling it twice with the same set
	// leaves the store unchanged after the first call.
	UpsertMany(ctx context.Context, records []*model.Diagnosis) error
	GetByID(ctx context.Context, id int) (*model.Diagnosis, error)
	// GetAll returns every cached record ordered by creation time descending.
	GetAll(ctx context.Context) ([]*model.Diagnosis, error)
	GetByFarmer(ctx context.Context, farmerID string) ([]*model.Diagnosis, error)
	// SearchByDisease matches the detected disease name by case-insensitive
	// substring.
	SearchByDisease(ctx context.Context, diseaseName string) ([]*model.Diagnosis, error)
	// FilterByConfidence returns records with confidence >= min, ordered by
	// confidence descending.
	FilterByConfidence(ctx context.Context, minConfidence float64) ([]*model.Diagnosis, error)
	DeleteByID(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
