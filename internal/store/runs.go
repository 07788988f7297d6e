package store

import (
	"context"
	"time"

	apperrors "github.com/rcliao/family-tree/internal/errors"
)

// ListRuns returns the recorded ingestion runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]IngestionRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, collection, source, started_at, finished_at, individuals, families, memberships, skipped
		 FROM ingestion_runs ORDER BY rowid DESC`)
	if err != nil {
		return nil, apperrors.NewStorageError("list runs", err)
	}
	defer rows.Close()

	var runs []IngestionRun
	for rows.Next() {
		var r IngestionRun
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Collection, &r.Source, &started, &finished,
			&r.Individuals, &r.Families, &r.Memberships, &r.Skipped); err != nil {
			return nil, apperrors.NewStorageError("list runs", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list runs", err)
	}
	return runs, nil
}
