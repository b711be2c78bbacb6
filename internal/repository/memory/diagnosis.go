// Package memory provides an in-process RecordStore backed by go-cache,
// suitable for single-node deployments and tests.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/cropdoctor/diagnosis-api/internal/model"
	"github.com/cropdoctor/diagnosis-api/internal/repository"
)

type diagnosisStore struct {
	cache *gocache.Cache

	// revisions counts upserts per id so tests can detect lost updates.
	// It is bookkeeping only and never changes read results.
	mu        sync.Mutex
	revisions map[int]int64
}

func NewDiagnosisStore() repository.RecordStore {
	return &diagnosisStore{
		cache:     gocache.New(gocache.NoExpiration, 0),
		revisions: make(map[int]int64),
	}
}

// NewDiagnosisStoreWithRevisions returns the store alongside its revision
// reader for tests that assert on write counts.
func NewDiagnosisStoreWithRevisions() (repository.RecordStore, RevisionReader) {
	s := &diagnosisStore{
		cache:     gocache.New(gocache.NoExpiration, 0),
		revisions: make(map[int]int64),
	}
	return s, s
}

// RevisionReader exposes the per-id upsert counter.
type RevisionReader interface {
	Revision(id int) int64
}

func (s *diagnosisStore) Revision(id int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revisions[id]
}

func (s *diagnosisStore) Upsert(_ context.Context, record *model.Diagnosis) error {
	s.cache.Set(key(record.ID), record.Clone(), gocache.NoExpiration)
	s.mu.Lock()
	s.revisions[record.ID]++
	s.mu.Unlock()
	return nil
}

func (s *diagnosisStore) UpsertMany(ctx context.Context, records []*model.Diagnosis) error {
	for _, record := range records {
		if err := s.Upsert(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (s *diagnosisStore) GetByID(_ context.Context, id int) (*model.Diagnosis, error) {
	v, ok := s.cache.Get(key(id))
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v.(*model.Diagnosis).Clone(), nil
}

func (s *diagnosisStore) GetAll(ctx context.Context) ([]*model.Diagnosis, error) {
	return s.collect(func(*model.Diagnosis) bool { return true }, byCreatedAtDesc), nil
}

func (s *diagnosisStore) GetByFarmer(_ context.Context, farmerID string) ([]*model.Diagnosis, error) {
	return s.collect(func(d *model.Diagnosis) bool {
		return d.FarmerID != nil && *d.FarmerID == farmerID
	}, byCreatedAtDesc), nil
}

func (s *diagnosisStore) SearchByDisease(_ context.Context, diseaseName string) ([]*model.Diagnosis, error) {
	needle := strings.ToLower(diseaseName)
	return s.collect(func(d *model.Diagnosis) bool {
		return strings.Contains(strings.ToLower(d.DiseaseDetected), needle)
	}, byCreatedAtDesc), nil
}

func (s *diagnosisStore) FilterByConfidence(_ context.Context, minConfidence float64) ([]*model.Diagnosis, error) {
	return s.collect(func(d *model.Diagnosis) bool {
		return d.Confidence >= minConfidence
	}, byConfidenceDesc), nil
}

func (s *diagnosisStore) DeleteByID(_ context.Context, id int) error {
	s.cache.Delete(key(id))
	return nil
}

func (s *diagnosisStore) DeleteAll(_ context.Context) error {
	s.cache.Flush()
	return nil
}

func (s *diagnosisStore) Count(_ context.Context) (int, error) {
	return s.cache.ItemCount(), nil
}

func (s *diagnosisStore) collect(match func(*model.Diagnosis) bool, order func([]*model.Diagnosis)) []*model.Diagnosis {
	items := s.cache.Items()
	records := make([]*model.Diagnosis, 0, len(items))
	for _, item := range items {
		d := item.Object.(*model.Diagnosis)
		if match(d) {
			records = append(records, d.Clone())
		}
	}
	order(records)
	return records
}

func byCreatedAtDesc(records []*model.Diagnosis) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
}

func byConfidenceDesc(records []*model.Diagnosis) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Confidence != records[j].Confidence {
			return records[i].Confidence > records[j].Confidence
		}
		return records[i].ID > records[j].ID
	})
}

func key(id int) string {
	return strconv.Itoa(id)
}
