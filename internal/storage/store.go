package storage

import (
	"context"

	"epigraph/internal/timeseries"
)

// StudyRecord describes one persisted parameter study.
type StudyRecord struct {
	ID      string  `json:"id"`
	Label   string  `json:"label,omitempty"`
	Seed    int64   `json:"seed"`
	NumRuns int     `json:"num_runs"`
	T0      float64 `json:"t0"`
	Tmax    float64 `json:"tmax"`
	Dt      float64 `json:"dt"`
}

// RunRecord holds the per-node results of one ensemble run. Failed runs
// are stored without results so the effective sample count stays
// visible.
type RunRecord struct {
	StudyID  string                   `json:"study_id"`
	RunIndex int                      `json:"run_index"`
	Failed   bool                     `json:"failed"`
	Results  []*timeseries.TimeSeries `json:"-"`
}

// Store defines persistence operations for studies and their runs.
type Store interface {
	Init(ctx context.Context) error
	SaveStudy(ctx context.Context, study StudyRecord) error
	GetStudy(ctx context.Context, id string) (StudyRecord, bool, error)
	ListStudies(ctx context.Context) ([]StudyRecord, error)
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, studyID string, runIndex int) (RunRecord, bool, error)
	ListRuns(ctx context.Context, studyID string) ([]RunRecord, error)
}
