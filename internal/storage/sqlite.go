//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS studies (
			id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS runs (
			study_id TEXT NOT NULL,
			run_index INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			payload BLOB,
			PRIMARY KEY (study_id, run_index)
		);
	`)
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store not initialized")
	}
	return s.db, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) SaveStudy(ctx context.Context, study StudyRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeStudy(study)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO studies (id, payload) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload
	`, study.ID, payload)
	return err
}

func (s *SQLiteStore) GetStudy(ctx context.Context, id string) (StudyRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return StudyRecord{}, false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM studies WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StudyRecord{}, false, nil
		}
		return StudyRecord{}, false, err
	}
	study, err := DecodeStudy(payload)
	if err != nil {
		return StudyRecord{}, false, fmt.Errorf("decode study %s: %w", id, err)
	}
	return study, true, nil
}

func (s *SQLiteStore) ListStudies(ctx context.Context) ([]StudyRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT payload FROM studies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StudyRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		study, err := DecodeStudy(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, study)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	var payload []byte
	if !run.Failed {
		payload, err = EncodeResults(run.Results)
		if err != nil {
			return err
		}
	}
	failed := 0
	if run.Failed {
		failed = 1
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (study_id, run_index, failed, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT(study_id, run_index) DO UPDATE SET
			failed = excluded.failed,
			payload = excluded.payload
	`, run.StudyID, run.RunIndex, failed, payload)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, studyID string, runIndex int) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}
	var failed int
	var payload []byte
	err = db.QueryRowContext(ctx, `
		SELECT failed, payload FROM runs WHERE study_id = ? AND run_index = ?
	`, studyID, runIndex).Scan(&failed, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}
	run := RunRecord{StudyID: studyID, RunIndex: runIndex, Failed: failed != 0}
	if !run.Failed && len(payload) > 0 {
		run.Results, err = DecodeResults(payload)
		if err != nil {
			return RunRecord{}, false, fmt.Errorf("decode run %s/%d: %w", studyID, runIndex, err)
		}
	}
	return run, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, studyID string) ([]RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_index, failed, payload FROM runs WHERE study_id = ? ORDER BY run_index
	`, studyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var runIndex, failed int
		var payload []byte
		if err := rows.Scan(&runIndex, &failed, &payload); err != nil {
			return nil, err
		}
		run := RunRecord{StudyID: studyID, RunIndex: runIndex, Failed: failed != 0}
		if !run.Failed && len(payload) > 0 {
			run.Results, err = DecodeResults(payload)
			if err != nil {
				return nil, fmt.Errorf("decode run %s/%d: %w", studyID, runIndex, err)
			}
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
