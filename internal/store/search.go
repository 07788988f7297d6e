package store

import (
	"context"
	"strings"

	apperrors "github.com/rcliao/family-tree/internal/errors"
	"github.com/rcliao/family-tree/internal/model"
)

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchParams holds parameters for searching individuals.
type SearchParams struct {
	Query string
	Limit int
}

// SearchIndividuals finds individuals whose given or family name contains the query.
// Each word of the query must match one of the two names.
func (s *SQLiteStore) SearchIndividuals(ctx context.Context, p SearchParams) ([]model.Individual, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	var where []string
	var args []interface{}
	for _, word := range strings.Fields(p.Query) {
		like := "%" + likeEscaper.Replace(word) + "%"
		where = append(where, `(i.given_name LIKE ? ESCAPE '\' OR i.family_name LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	if len(where) == 0 {
		return nil, nil
	}

	query := `SELECT ` + individualColumns + lineage + `
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY i.family_name, i.given_name
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("search individuals", err)
	}
	defer rows.Close()

	var results []model.Individual
	for rows.Next() {
		ind, err := scanIndividual(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("search individuals", err)
		}
		results = append(results, ind)
	}
	return results, rows.Err()
}
