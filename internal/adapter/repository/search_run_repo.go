package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hotel-curator/internal/domain"
)

// DB is the subset of pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type SearchRunRepository struct {
	db DB
}

// NewSearchRunRepository returns a repository backed by the search_runs table.
func NewSearchRunRepository(db DB) *SearchRunRepository {
	return &SearchRunRepository{db: db}
}

var (
	_ domain.SearchRunRepository = (*SearchRunRepository)(nil)
	_ domain.SearchRunReader     = (*SearchRunRepository)(nil)
)

func (r *SearchRunRepository) Start(ctx context.Context, run *domain.SearchRun) error {
	query := `
		INSERT INTO search_runs (id, criteria, status, started_at)
		VALUES ($1, $2, $3, $4)
	`
	criteria, err := json.Marshal(run.Criteria)
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, run.ID, criteria, string(run.Status), run.StartedAt); err != nil {
		return fmt.Errorf("failed to insert search run: %w", err)
	}
	return nil
}

func (r *SearchRunRepository) Finish(ctx context.Context, run *domain.SearchRun) error {
	query := `
		UPDATE search_runs
		SET status = $2, candidates_found = $3, shortlist_size = $4, degraded_batches = $5,
			result_ids = $6, error_kind = $7, error_message = $8, finished_at = $9
		WHERE id = $1
	`
	resultIDs := run.ResultIDs
	if resultIDs == nil {
		resultIDs = []string{}
	}
	tag, err := r.db.Exec(ctx, query,
		run.ID,
		string(run.Status),
		run.CandidatesFound,
		run.ShortlistSize,
		run.DegradedBatches,
		resultIDs,
		nullIfEmpty(run.ErrorKind),
		nullIfEmpty(run.ErrorMessage),
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update search run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("search run %s not found", run.ID)
	}
	return nil
}

func (r *SearchRunRepository) Recent(ctx context.Context, limit int) ([]domain.SearchRun, error) {
	query := `
		SELECT id, criteria, status, candidates_found, shortlist_size, degraded_batches,
			result_ids, COALESCE(error_kind, ''), COALESCE(error_message, ''), started_at, finished_at
		FROM search_runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SearchRun
	for rows.Next() {
		var (
			run      domain.SearchRun
			criteria []byte
			status   string
		)
		if err := rows.Scan(
			&run.ID,
			&criteria,
			&status,
			&run.CandidatesFound,
			&run.ShortlistSize,
			&run.DegradedBatches,
			&run.ResultIDs,
			&run.ErrorKind,
			&run.ErrorMessage,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search run: %w", err)
		}
		run.Status = domain.SearchRunStatus(status)
		if len(criteria) > 0 {
			if err := json.Unmarshal(criteria, &run.Criteria); err != nil {
				return nil, fmt.Errorf("failed to decode criteria: %w", err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search runs: %w", err)
	}
	return runs, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
