package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/internal/repository"
)

type analysisRepository struct {
	BaseRepository
}

// NewAnalysisRepository creates a repository backed by the analyses
// table. The seq column preserves insertion order for listings and for
// timestamp tie-breaks.
func NewAnalysisRepository(db *sqlx.DB) repository.AnalysisRepository {
	return &analysisRepository{NewBaseRepository(db)}
}

type analysisRow struct {
	ID                 uuid.UUID `db:"id"`
	PatientID          string    `db:"patient_id"`
	PatientName        string    `db:"patient_name"`
	PatientGender      string    `db:"patient_gender"`
	PatientAge         int       `db:"patient_age"`
	Priority           string    `db:"priority"`
	SelectedParameters []byte    `db:"selected_parameters"`
	Data               []byte    `db:"data"`
	RecordedAt         time.Time `db:"recorded_at"`
}

func (row *analysisRow) toModel() (*model.AnalysisRecord, error) {
	record := &model.AnalysisRecord{
		ID:            row.ID,
		PatientID:     row.PatientID,
		PatientName:   row.PatientName,
		PatientGender: model.Gender(row.PatientGender),
		PatientAge:    row.PatientAge,
		Priority:      model.Priority(row.Priority),
		Timestamp:     row.RecordedAt,
	}
	if err := json.Unmarshal(row.SelectedParameters, &record.SelectedParameters); err != nil {
		return nil, fmt.Errorf("failed to decode selected_parameters: %w", err)
	}
	if err := json.Unmarshal(row.Data, &record.Data); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return record, nil
}

func (r *analysisRepository) Save(ctx context.Context, record *model.AnalysisRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	params, err := json.Marshal(record.SelectedParameters)
	if err != nil {
		return fmt.Errorf("failed to encode selected_parameters: %w", err)
	}
	data, err := json.Marshal(record.Data)
	if err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	query := `
		INSERT INTO analyses (
			id, patient_id, patient_name, patient_gender, patient_age,
			priority, selected_parameters, data, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.PatientID,
		record.PatientName,
		string(record.PatientGender),
		record.PatientAge,
		string(record.Priority),
		params,
		data,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis record: %w", err)
	}
	return nil
}

const analysisColumns = `
	id, patient_id, patient_name, patient_gender, patient_age,
	priority, selected_parameters, data, recorded_at
`

func (r *analysisRepository) Get(ctx context.Context, id uuid.UUID) (*model.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`

	var row analysisRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis record: %w", err)
	}
	return row.toModel()
}

func (r *analysisRepository) List(ctx context.Context) ([]*model.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses ORDER BY seq ASC`

	var rows []analysisRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list analysis records: %w", err)
	}
	return rowsToModels(rows)
}

func (r *analysisRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE patient_id = $1 ORDER BY seq ASC`

	var rows []analysisRow
	if err := r.db.SelectContext(ctx, &rows, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient records: %w", err)
	}
	return rowsToModels(rows)
}

func (r *analysisRepository) LatestFor(ctx context.Context, patientID string) (*model.AnalysisRecord, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM analyses
		WHERE patient_id = $1
		ORDER BY recorded_at DESC, seq DESC
		LIMIT 1
	`
	var row analysisRow
	err := r.db.GetContext(ctx, &row, query, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest record: %w", err)
	}
	return row.toModel()
}

func (r *analysisRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func rowsToModels(rows []analysisRow) ([]*model.AnalysisRecord, error) {
	out := make([]*model.AnalysisRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}
