package store

import (
	"context"

	apperrors "github.com/rcliao/family-tree/internal/errors"
	"github.com/rcliao/family-tree/internal/model"
)

// GetMemberships returns every (family, child) edge, children in record order.
func (s *SQLiteStore) GetMemberships(ctx context.Context) ([]model.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT family_id, child_id FROM family_children ORDER BY family_id, seq`)
	if err != nil {
		return nil, apperrors.NewStorageError("scan memberships", err)
	}
	defer rows.Close()

	var members []model.Membership
	for rows.Next() {
		var m model.Membership
		if err := rows.Scan(&m.FamilyID, &m.ChildID); err != nil {
			return nil, apperrors.NewStorageError("scan memberships", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("scan memberships", err)
	}
	return members, nil
}

// FamiliesOfChild returns the IDs of every family claiming the child, oldest claim first.
// More than one entry means the derived parents come from the last one.
func (s *SQLiteStore) FamiliesOfChild(ctx context.Context, childID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT family_id FROM family_children WHERE child_id = ? ORDER BY rowid`, childID)
	if err != nil {
		return nil, apperrors.NewStorageError("families of child "+childID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewStorageError("families of child "+childID, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
