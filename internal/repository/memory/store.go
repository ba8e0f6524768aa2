package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/pkg/errors"
	"github.com/labwise/lab-api/pkg/logger"
)

// Store keeps analysis records in memory and mirrors them to a JSON
// snapshot file. Appends and snapshot writes happen under one lock so
// the file always reflects a consistent prefix of the record sequence.
type Store struct {
	mu      sync.RWMutex
	records []*model.AnalysisRecord
	path    string
	logger  *logger.Logger
}

// NewStore creates a store snapshotting to path. An empty path keeps
// the store purely in memory.
func NewStore(path string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Store{path: path, logger: log}
}

// Load reads the snapshot file into memory, replacing current state.
// A missing file is an empty store. Malformed records are skipped with
// a warning; a file that cannot be parsed at all leaves the in-memory
// state untouched.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewStorage("load", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return errors.NewStorage("load", fmt.Errorf("failed to parse snapshot: %w", err))
	}

	records := make([]*model.AnalysisRecord, 0, len(items))
	for i, item := range items {
		var record model.AnalysisRecord
		if err := json.Unmarshal(item, &record); err != nil {
			s.logger.Warn("skipping malformed snapshot record", "index", i, "error", err.Error())
			continue
		}
		if err := record.Validate(); err != nil {
			s.logger.Warn("skipping invalid snapshot record", "index", i, "error", err.Error())
			continue
		}
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		records = append(records, &record)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

// Save appends the record and writes a new snapshot. A failed snapshot
// write rolls the append back so memory and disk stay consistent.
func (s *Store) Save(ctx context.Context, record *model.AnalysisRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record.Clone())
	if err := s.writeSnapshot(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return errors.NewStorage("save", err)
	}
	return nil
}

// writeSnapshot writes all records to a temporary file and swaps it
// into place. Callers hold the write lock.
func (s *Store) writeSnapshot() error {
	if s.path == "" {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to swap snapshot: %w", err)
	}
	return nil
}

// Get returns the record with the given ID, or (nil, nil) if absent.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*model.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return nil, nil
}

// List returns all records in insertion order.
func (s *Store) List(ctx context.Context) ([]*model.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.AnalysisRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

// ListByPatient returns the patient's records in insertion order.
func (s *Store) ListByPatient(ctx context.Context, patientID string) ([]*model.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.AnalysisRecord
	for _, r := range s.records {
		if r.PatientID == patientID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// LatestFor returns the patient's most recent record by timestamp,
// ties broken by latest insertion.
func (s *Store) LatestFor(ctx context.Context, patientID string) (*model.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.AnalysisRecord
	for _, r := range s.records {
		if r.PatientID != patientID {
			continue
		}
		if latest == nil || !r.Timestamp.Before(latest.Timestamp) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	return latest.Clone(), nil
}

// Ping reports whether the store is usable.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of records held in memory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
