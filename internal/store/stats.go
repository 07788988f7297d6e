package store

import (
	"context"
	"os"

	apperrors "github.com/rcliao/family-tree/internal/errors"
)

// Stats holds collection statistics.
type Stats struct {
	DBPath        string `json:"db_path"`
	DBSizeBytes   int64  `json:"db_size_bytes"`
	Individuals   int    `json:"individuals"`
	Families      int    `json:"families"`
	Memberships   int    `json:"memberships"`
	Partnerships  int    `json:"partnerships"`
	MultiClaimed  int    `json:"multi_claimed_children"`
	IngestionRuns int    `json:"ingestion_runs"`
}

// Stats returns collection statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	// DB file size
	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		dst   *int
		query string
	}{
		{&st.Individuals, `SELECT COUNT(*) FROM individuals`},
		{&st.Families, `SELECT COUNT(*) FROM families`},
		{&st.Memberships, `SELECT COUNT(*) FROM family_children`},
		{&st.Partnerships, `SELECT COUNT(*) FROM families WHERE father_id IS NOT NULL AND mother_id IS NOT NULL`},
		{&st.MultiClaimed, `SELECT COUNT(*) FROM (SELECT child_id FROM family_children GROUP BY child_id HAVING COUNT(*) > 1)`},
		{&st.IngestionRuns, `SELECT COUNT(*) FROM ingestion_runs`},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return st, apperrors.NewStorageError("stats", err)
		}
	}

	return st, nil
}
