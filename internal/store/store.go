// Package store provides the genealogy storage interface and SQLite implementation.
package store

import (
	"context"
	"time"

	"github.com/rcliao/family-tree/internal/model"
)

// IngestionRun records one completed ingestion into a collection.
type IngestionRun struct {
	ID          string    `json:"id"`
	Collection  string    `json:"collection"`
	Source      string    `json:"source"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Individuals int       `json:"individuals"`
	Families    int       `json:"families"`
	Memberships int       `json:"memberships"`
	Skipped     int       `json:"skipped"`
}

// Writer holds the insert-or-ignore operations. Each returns whether a row was added.
type Writer interface {
	// UpsertIndividual inserts the individual unless its ID exists. First write wins.
	UpsertIndividual(ctx context.Context, ind model.Individual) (bool, error)

	// UpsertFamily inserts the family row unless its ID exists.
	// Children are not written; use AddChildMembership.
	UpsertFamily(ctx context.Context, fam model.Family) (bool, error)

	// AddChildMembership inserts the (family, child) edge unless it exists.
	AddChildMembership(ctx context.Context, familyID, childID string) (bool, error)

	// RecordRun stores an ingestion run, assigning run.ID when it is empty.
	RecordRun(ctx context.Context, run *IngestionRun) error
}

// Reader holds the scans used by export.
type Reader interface {
	// GetIndividuals returns every individual with derived parents. Order is unspecified.
	GetIndividuals(ctx context.Context) ([]model.Individual, error)

	// GetFamilies returns every family with its children. Order is unspecified.
	GetFamilies(ctx context.Context) ([]model.Family, error)

	// GetParents returns the derived mother and father of a child, nil when unknown.
	GetParents(ctx context.Context, childID string) (mother, father *string, err error)
}

// Store defines the genealogy storage interface.
type Store interface {
	Writer
	Reader

	// RunInTx runs fn in one transaction: commit on nil, rollback otherwise.
	RunInTx(ctx context.Context, fn func(tx Writer) error) error

	// Close closes the store.
	Close() error
}
