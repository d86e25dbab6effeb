package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SearchRunStatus is the lifecycle state of an audited search.
type SearchRunStatus string

const (
	SearchRunRunning   SearchRunStatus = "running"
	SearchRunDone      SearchRunStatus = "done"
	SearchRunFailed    SearchRunStatus = "failed"
	SearchRunCancelled SearchRunStatus = "cancelled"
)

// SearchRun is the audit record of one search request.
type SearchRun struct {
	ID              uuid.UUID       `json:"id"`
	Criteria        map[string]any  `json:"criteria"`
	Status          SearchRunStatus `json:"status"`
	CandidatesFound int             `json:"candidates_found"`
	ShortlistSize   int             `json:"shortlist_size"`
	DegradedBatches int             `json:"degraded_batches"`
	ResultIDs       []string        `json:"result_ids"`
	ErrorKind       string          `json:"error_kind,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      *time.Time      `json:"finished_at,omitempty"`
}

// SearchRunRepository persists search audit records.
type SearchRunRepository interface {
	Start(ctx context.Context, run *SearchRun) error
	Finish(ctx context.Context, run *SearchRun) error
}

// SearchRunReader lists recent audit records, newest first.
type SearchRunReader interface {
	Recent(ctx context.Context, limit int) ([]SearchRun, error)
}
