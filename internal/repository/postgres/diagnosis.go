package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cropdoctor/diagnosis-api/internal/model"
	"github.com/cropdoctor/diagnosis-api/internal/repository"
)

type diagnosisStore struct {
	db *sqlx.DB
}

func NewDiagnosisStore(db *sqlx.DB) repository.RecordStore {
	return &diagnosisStore{db: db}
}

// diagnosisRow adds the jsonb details column to the model fields.
type diagnosisRow struct {
	model.Diagnosis
	DetailsJSON []byte `db:"details"`
}

const upsertQuery = `
	INSERT INTO diagnoses (
		id, farmer_id, image_path, audio_path, question,
		latitude, longitude, province, district,
		temperature, humidity, weather_conditions,
		disease_detected, confidence, severity, full_response, details,
		status, expert_reviewed, expert_comment, expert_id,
		created_at, updated_at, locally_dirty
	) VALUES (
		:id, :farmer_id, :image_path, :audio_path, :question,
		:latitude, :longitude, :province, :district,
		:temperature, :humidity, :weather_conditions,
		:disease_detected, :confidence, :severity, :full_response, :details,
		:status, :expert_reviewed, :expert_comment, :expert_id,
		:created_at, :updated_at, :locally_dirty
	)
	ON CONFLICT (id) DO UPDATE SET
		farmer_id = EXCLUDED.farmer_id,
		image_path = EXCLUDED.image_path,
		audio_path = EXCLUDED.audio_path,
		question = EXCLUDED.question,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		province = EXCLUDED.province,
		district = EXCLUDED.district,
		temperature = EXCLUDED.temperature,
		humidity = EXCLUDED.humidity,
		weather_conditions = EXCLUDED.weather_conditions,
		disease_detected = EXCLUDED.disease_detected,
		confidence = EXCLUDED.confidence,
		severity = EXCLUDED.severity,
		full_response = EXCLUDED.full_response,
		details = EXCLUDED.details,
		status = EXCLUDED.status,
		expert_reviewed = EXCLUDED.expert_reviewed,
		expert_comment = EXCLUDED.expert_comment,
		expert_id = EXCLUDED.expert_id,
		created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at,
		locally_dirty = EXCLUDED.locally_dirty
`

func (s *diagnosisStore) Upsert(ctx context.Context, record *model.Diagnosis) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, upsertQuery, row); err != nil {
		return fmt.Errorf("failed to upsert diagnosis %d: %w", record.ID, err)
	}
	return nil
}

func (s *diagnosisStore) UpsertMany(ctx context.Context, records []*model.Diagnosis) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, record := range records {
		row, err := toRow(record)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, upsertQuery, row); err != nil {
			return fmt.Errorf("failed to upsert diagnosis %d: %w", record.ID, err)
		}
	}
	return tx.Commit()
}

func (s *diagnosisStore) GetByID(ctx context.Context, id int) (*model.Diagnosis, error) {
	var row diagnosisRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM diagnoses WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnosis %d: %w", id, err)
	}
	return fromRow(&row)
}

func (s *diagnosisStore) GetAll(ctx context.Context) ([]*model.Diagnosis, error) {
	return s.selectMany(ctx, `SELECT * FROM diagnoses ORDER BY created_at DESC, id DESC`)
}

func (s *diagnosisStore) GetByFarmer(ctx context.Context, farmerID string) ([]*model.Diagnosis, error) {
	return s.selectMany(ctx,
		`SELECT * FROM diagnoses WHERE farmer_id = $1 ORDER BY created_at DESC, id DESC`, farmerID)
}

func (s *diagnosisStore) SearchByDisease(ctx context.Context, diseaseName string) ([]*model.Diagnosis, error) {
	return s.selectMany(ctx,
		`SELECT * FROM diagnoses WHERE disease_detected ILIKE '%' || $1 || '%' ORDER BY created_at DESC, id DESC`,
		diseaseName)
}

func (s *diagnosisStore) FilterByConfidence(ctx context.Context, minConfidence float64) ([]*model.Diagnosis, error) {
	return s.selectMany(ctx,
		`SELECT * FROM diagnoses WHERE confidence >= $1 ORDER BY confidence DESC, id DESC`, minConfidence)
}

func (s *diagnosisStore) DeleteByID(ctx context.Context, id int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM diagnoses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete diagnosis %d: %w", id, err)
	}
	return nil
}

func (s *diagnosisStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM diagnoses`); err != nil {
		return fmt.Errorf("failed to delete diagnoses: %w", err)
	}
	return nil
}

func (s *diagnosisStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM diagnoses`); err != nil {
		return 0, fmt.Errorf("failed to count diagnoses: %w", err)
	}
	return count, nil
}

func (s *diagnosisStore) selectMany(ctx context.Context, query string, args ...interface{}) ([]*model.Diagnosis, error) {
	var rows []diagnosisRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query diagnoses: %w", err)
	}
	records := make([]*model.Diagnosis, 0, len(rows))
	for i := range rows {
		record, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func toRow(record *model.Diagnosis) (*diagnosisRow, error) {
	row := diagnosisRow{Diagnosis: *record}
	if record.Details != nil {
		data, err := json.Marshal(record.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal diagnosis details: %w", err)
		}
		row.DetailsJSON = data
	}
	return &row, nil
}

func fromRow(row *diagnosisRow) (*model.Diagnosis, error) {
	record := row.Diagnosis
	if len(row.DetailsJSON) > 0 {
		var details model.DiagnosisDetails
		if err := json.Unmarshal(row.DetailsJSON, &details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diagnosis details: %w", err)
		}
		record.Details = &details
	}
	return &record, nil
}
