package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/family-tree/internal/collection"
	"github.com/rcliao/family-tree/internal/logger"
)

// MaxConcurrentCollections caps how many collections are written at once.
const MaxConcurrentCollections = 4

// File is one input file and the collection it loads into.
type File struct {
	Path       string
	Collection string
}

// IngestFiles loads every file into its collection. Different collections are
// written concurrently; files for the same collection run one after another in
// the given order. The first failure cancels the rest and is returned; results
// of runs that already committed stay in the stores.
func IngestFiles(ctx context.Context, c *collection.Collections, files []File) ([]*Result, error) {
	results := make([]*Result, len(files))

	var order []string
	groups := make(map[string][]int)
	for i, f := range files {
		name := collection.SanitizeName(f.Collection)
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentCollections)

	for _, name := range order {
		name, idxs := name, groups[name]
		g.Go(func() error {
			for _, i := range idxs {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := ingestFile(gctx, c, name, files[i].Path)
				if err != nil {
					return fmt.Errorf("ingest %s: %w", files[i].Path, err)
				}
				results[i] = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func ingestFile(ctx context.Context, c *collection.Collections, name, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	existed := c.Exists(name)
	s, err := c.Create(name)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	res, err := Ingest(ctx, f, s, Params{Collection: name, Source: filepath.Base(path)})
	s.Close()
	if err != nil {
		// a collection whose first ingestion failed must not show up as an empty tree
		if !existed {
			if rmErr := c.Remove(name); rmErr != nil {
				logger.Get().Warn("remove failed collection", zap.String("collection", name), zap.Error(rmErr))
			}
		}
		return nil, err
	}
	return res, nil
}
