// Package diagnosis implements the offline-first sync layer between the
// remote diagnosis service and the local record cache. Reads and writes are
// remote-first with a cache fallback, so callers keep getting answers under
// intermittent connectivity.
package diagnosis

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/cropdoctor/diagnosis-api/internal/gateway"
	"github.com/cropdoctor/diagnosis-api/internal/model"
	"github.com/cropdoctor/diagnosis-api/internal/repository"
	"github.com/cropdoctor/diagnosis-api/internal/triage"
	apperrors "github.com/cropdoctor/diagnosis-api/pkg/errors"
	"github.com/cropdoctor/diagnosis-api/pkg/messaging"
	"github.com/cropdoctor/diagnosis-api/pkg/metrics"
)

// EventChannel is the broker channel record-change events are published on.
const EventChannel = "diagnosis.events"

// Record-change event types.
const (
	EventCreated  = "DIAGNOSIS_CREATED"
	EventUpdated  = "DIAGNOSIS_UPDATED"
	EventReviewed = "DIAGNOSIS_REVIEWED"
	EventEvicted  = "DIAGNOSIS_EVICTED"
)

type SyncService interface {
	Create(ctx context.Context, req *model.CreateDiagnosisRequest) (*model.Diagnosis, error)
	GetByID(ctx context.Context, id int) (*model.Diagnosis, error)
	GetHistory(ctx context.Context, opts HistoryOptions) (*HistoryResult, error)
	SaveLocal(ctx context.Context, record *model.Diagnosis) error
	SearchByDisease(ctx context.Context, diseaseName string) ([]*model.Diagnosis, error)
	FilterByConfidence(ctx context.Context, minConfidence float64) ([]*model.Diagnosis, error)
	ListNeedingReview(ctx context.Context) ([]*model.Diagnosis, error)
	SubmitReview(ctx context.Context, id int, review ReviewInput) (*model.Diagnosis, error)
	Evict(ctx context.Context, id int) error
	EvictAll(ctx context.Context) error
	CachedCount(ctx context.Context) (int, error)
}

// HistoryOptions selects one page of the remote history. Limit defaults to
// the remote API's page size when zero.
type HistoryOptions struct {
	FarmerID *string
	Limit    int
	Offset   int
}

// HistoryResult is the outcome of a history read. When FromCache is true the
// records came from the local cache after a remote failure; RemoteErr then
// carries the translated cause so callers can tell "no history" apart from
// "history served while offline". The cache fallback does not paginate: it
// returns the full filtered cache and Total reflects that.
type HistoryResult struct {
	Records   []*model.Diagnosis
	Total     int
	FromCache bool
	RemoteErr error
}

// ReviewInput carries an explicit expert-review update. A nil Comment keeps
// the prior expert comment; a nil Status keeps the prior status.
type ReviewInput struct {
	ExpertID *string
	Comment  *string
	Status   *model.DiagnosisStatus
}

type Service struct {
	gateway    gateway.Gateway
	store      repository.RecordStore
	classifier *triage.Classifier
	broker     messaging.Broker
	metrics    *metrics.Metrics
	validate   *validator.Validate
}

// NewService builds the sync coordinator. broker and m may be nil; change
// notifications and metrics are then skipped.
func NewService(gw gateway.Gateway, store repository.RecordStore, classifier *triage.Classifier, broker messaging.Broker, m *metrics.Metrics) *Service {
	return &Service{
		gateway:    gw,
		store:      store,
		classifier: classifier,
		broker:     broker,
		metrics:    m,
		validate:   validator.New(),
	}
}

// Create submits the request to the remote service and writes the returned
// record through to the cache. There is no local fallback: the server assigns
// the record id, so an unreachable remote fails the call.
func (s *Service) Create(ctx context.Context, req *model.CreateDiagnosisRequest) (*model.Diagnosis, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidation("invalid diagnosis request", err)
	}

	record, err := s.remoteCall("create", func() (*model.Diagnosis, error) {
		return s.gateway.Create(ctx, req)
	})
	if err != nil {
		return nil, apperrors.NewUnavailable("diagnosis service unreachable", err)
	}

	record.LocallyDirty = false
	s.writeThrough(ctx, record)
	s.publish(ctx, EventCreated, record)

	log.Debug().Int("id", record.ID).Str("disease", record.DiseaseDetected).Msg("diagnosis created")
	return record, nil
}

// GetByID fetches the record remote-first. On remote failure the cached copy
// is returned if present; it is possibly stale and keeps its stored
// locally-dirty flag. When both sources miss, the result is not-found with
// the original cause preserved.
func (s *Service) GetByID(ctx context.Context, id int) (*model.Diagnosis, error) {
	record, err := s.remoteCall("get", func() (*model.Diagnosis, error) {
		return s.gateway.GetByID(ctx, id)
	})
	if err == nil {
		record.LocallyDirty = false
		s.writeThrough(ctx, record)
		return record, nil
	}

	s.countFallback("get")
	log.Warn().Err(err).Int("id", id).Msg("remote fetch failed, trying local cache")

	cached, cacheErr := s.store.GetByID(ctx, id)
	if cacheErr == nil {
		s.countCacheHit("get")
		return cached, nil
	}
	if !errors.Is(cacheErr, repository.ErrNotFound) {
		return nil, apperrors.Internal(cacheErr)
	}
	return nil, apperrors.NewNotFound("diagnosis", err)
}

// GetHistory reads one remote page and merges it into the cache. On remote
// failure it serves the full filtered cache instead and flags the result.
func (s *Service) GetHistory(ctx context.Context, opts HistoryOptions) (*HistoryResult, error) {
	start := time.Now()
	records, total, err := s.gateway.GetHistory(ctx, opts.FarmerID, opts.Limit, opts.Offset)
	s.observeRemote("history", start, err)

	if err == nil {
		for _, record := range records {
			record.LocallyDirty = false
		}
		if storeErr := s.store.UpsertMany(ctx, records); storeErr != nil {
			log.Warn().Err(storeErr).Msg("failed to cache history page")
		}
		s.updateCacheGauge(ctx)
		return &HistoryResult{Records: records, Total: total}, nil
	}

	s.countFallback("history")
	log.Warn().Err(err).Msg("remote history failed, serving local cache")

	var cached []*model.Diagnosis
	var cacheErr error
	if opts.FarmerID != nil {
		cached, cacheErr = s.store.GetByFarmer(ctx, *opts.FarmerID)
	} else {
		cached, cacheErr = s.store.GetAll(ctx)
	}
	if cacheErr != nil {
		return nil, apperrors.Internal(cacheErr)
	}
	if len(cached) > 0 {
		s.countCacheHit("history")
	}

	return &HistoryResult{
		Records:   cached,
		Total:     len(cached),
		FromCache: true,
		RemoteErr: apperrors.NewUnavailable("history served from local cache", err),
	}, nil
}

// SaveLocal upserts the caller's explicit local snapshot. The copy is marked
// locally dirty; no remote write is attempted.
func (s *Service) SaveLocal(ctx context.Context, record *model.Diagnosis) error {
	snapshot := record.Clone()
	snapshot.LocallyDirty = true
	if err := s.store.Upsert(ctx, snapshot); err != nil {
		return apperrors.Internal(err)
	}
	s.updateCacheGauge(ctx)
	s.publish(ctx, EventUpdated, snapshot)
	return nil
}

func (s *Service) SearchByDisease(ctx context.Context, diseaseName string) ([]*model.Diagnosis, error) {
	records, err := s.store.SearchByDisease(ctx, diseaseName)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return records, nil
}

func (s *Service) FilterByConfidence(ctx context.Context, minConfidence float64) ([]*model.Diagnosis, error) {
	if err := triage.ValidateConfidence(minConfidence); err != nil {
		return nil, err
	}
	records, err := s.store.FilterByConfidence(ctx, minConfidence)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return records, nil
}

// ListNeedingReview returns the cached records the triage policy flags for
// expert attention.
func (s *Service) ListNeedingReview(ctx context.Context) ([]*model.Diagnosis, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	needing := make([]*model.Diagnosis, 0, len(all))
	for _, record := range all {
		if s.classifier.NeedsReviewRecord(record) {
			needing = append(needing, record)
		}
	}
	return needing, nil
}

// SubmitReview applies an explicit expert review to the cached record. The
// prior expert comment is retained unless the review overwrites it.
func (s *Service) SubmitReview(ctx context.Context, id int, review ReviewInput) (*model.Diagnosis, error) {
	record, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("diagnosis", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	record.ExpertReviewed = true
	if review.Comment != nil {
		record.ExpertComment = review.Comment
	}
	if review.ExpertID != nil {
		record.ExpertID = review.ExpertID
	}
	if review.Status != nil {
		record.Status = *review.Status
	}
	now := time.Now().UTC()
	record.UpdatedAt = &now
	record.LocallyDirty = true

	if err := s.store.Upsert(ctx, record); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.publish(ctx, EventReviewed, record)
	return record, nil
}

// Evict removes the record from the cache. Eviction is the only way a cached
// record goes away; there is no implicit expiry.
func (s *Service) Evict(ctx context.Context, id int) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return apperrors.Internal(err)
	}
	s.updateCacheGauge(ctx)
	s.publish(ctx, EventEvicted, map[string]int{"id": id})
	return nil
}

func (s *Service) EvictAll(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return apperrors.Internal(err)
	}
	s.updateCacheGauge(ctx)
	return nil
}

func (s *Service) CachedCount(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return count, nil
}

func (s *Service) remoteCall(op string, fn func() (*model.Diagnosis, error)) (*model.Diagnosis, error) {
	start := time.Now()
	record, err := fn()
	s.observeRemote(op, start, err)
	return record, err
}

// writeThrough caches a freshly fetched remote record. A cache-write failure
// is logged but does not fail the read; the remote answer is still good.
func (s *Service) writeThrough(ctx context.Context, record *model.Diagnosis) {
	if err := s.store.Upsert(ctx, record); err != nil {
		log.Warn().Err(err).Int("id", record.ID).Msg("failed to cache record")
		return
	}
	s.updateCacheGauge(ctx)
}

func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{Type: eventType, Payload: payload}
	if err := s.broker.Publish(ctx, EventChannel, msg); err != nil {
		if s.metrics != nil {
			s.metrics.EventsFailed.Inc()
		}
		log.Warn().Err(err).Str("event", eventType).Msg("failed to publish record event")
		return
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.Inc()
	}
}

func (s *Service) observeRemote(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = gateway.KindOf(err).String()
	}
	s.metrics.RemoteCalls.WithLabelValues(op, outcome).Inc()
	s.metrics.RemoteLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *Service) countFallback(op string) {
	if s.metrics != nil {
		s.metrics.CacheFallbacks.WithLabelValues(op).Inc()
	}
}

func (s *Service) countCacheHit(op string) {
	if s.metrics != nil {
		s.metrics.CacheHits.WithLabelValues(op).Inc()
	}
}

func (s *Service) updateCacheGauge(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if count, err := s.store.Count(ctx); err == nil {
		s.metrics.CachedRecords.Set(float64(count))
	}
}
