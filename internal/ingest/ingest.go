// Package ingest loads a record stream into a collection store.
package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/rcliao/family-tree/internal/errors"
	"github.com/rcliao/family-tree/internal/extract"
	"github.com/rcliao/family-tree/internal/gedcom"
	"github.com/rcliao/family-tree/internal/logger"
	"github.com/rcliao/family-tree/internal/store"
)

// Params identifies what is being ingested.
type Params struct {
	Collection string
	Source     string // free-form label such as the input file name
}

// Result summarizes one ingestion. Counts are rows newly inserted by this run.
type Result struct {
	RunID       string                          `json:"run_id"`
	Collection  string                          `json:"collection"`
	Records     int                             `json:"records"`
	Individuals int                             `json:"individuals"`
	Families    int                             `json:"families"`
	Memberships int                             `json:"memberships"`
	Ignored     int                             `json:"ignored"`
	Skipped     []*apperrors.StructureViolation `json:"-"`
	SkippedInfo []Skip                          `json:"skipped"`
}

// Skip is the reportable form of a skipped record.
type Skip struct {
	Line   int    `json:"line"`
	Tag    string `json:"tag,omitempty"`
	XRef   string `json:"xref,omitempty"`
	Reason string `json:"reason"`
}

// Ingest tokenizes r, extracts entities and writes them to s in a single transaction.
// Decoding and storage errors abort the call with nothing committed.
// Records that cannot be extracted are skipped and listed in Result.Skipped.
func Ingest(ctx context.Context, r io.Reader, s store.Store, p Params) (*Result, error) {
	log := logger.Get().With(zap.String("collection", p.Collection))
	started := time.Now()

	records, err := gedcom.Tokenize(r)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	batch := extract.Extract(records)
	res := &Result{
		Collection:  p.Collection,
		Records:     len(records),
		Ignored:     batch.Ignored,
		Skipped:     batch.Violations,
		SkippedInfo: []Skip{},
	}
	for _, v := range batch.Violations {
		log.Warn("skipped record",
			zap.Int("line", v.Line),
			zap.String("tag", v.Tag),
			zap.String("xref", v.XRef),
			zap.String("reason", v.Reason))
		res.SkippedInfo = append(res.SkippedInfo, Skip{Line: v.Line, Tag: v.Tag, XRef: v.XRef, Reason: v.Reason})
	}

	err = s.RunInTx(ctx, func(tx store.Writer) error {
		for _, ind := range batch.Individuals {
			added, err := tx.UpsertIndividual(ctx, ind)
			if err != nil {
				return err
			}
			if added {
				res.Individuals++
			}
		}
		for _, fam := range batch.Families {
			added, err := tx.UpsertFamily(ctx, fam)
			if err != nil {
				return err
			}
			if added {
				res.Families++
			}
			for _, child := range fam.Children {
				added, err := tx.AddChildMembership(ctx, fam.ID, child)
				if err != nil {
					return err
				}
				if added {
					res.Memberships++
				}
			}
		}

		run := &store.IngestionRun{
			Collection:  p.Collection,
			Source:      p.Source,
			StartedAt:   started,
			FinishedAt:  time.Now(),
			Individuals: res.Individuals,
			Families:    res.Families,
			Memberships: res.Memberships,
			Skipped:     len(res.Skipped),
		}
		if err := tx.RecordRun(ctx, run); err != nil {
			return err
		}
		res.RunID = run.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("write collection %s: %w", p.Collection, err)
	}

	log.Info("ingested",
		zap.String("run_id", res.RunID),
		zap.Int("records", res.Records),
		zap.Int("individuals", res.Individuals),
		zap.Int("families", res.Families),
		zap.Int("memberships", res.Memberships),
		zap.Int("skipped", len(res.Skipped)),
		zap.Duration("took", time.Since(started)))

	return res, nil
}
