// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Job names used by the server.
const (
	FolderTreeRefresh = "folder-tree-refresh"
	ViewerDataPrune   = "viewer-data-prune"
)

// Refresher reloads a cached resource.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// FolderTreeRefreshJob reloads the folder tree from the backend every
// interval. A failed refresh leaves the source on an empty root until the
// next tick.
func FolderTreeRefreshJob(src Refresher, timeout, interval time.Duration) Job {
	return Job{
		Name:     FolderTreeRefresh,
		Interval: interval,
		Timeout:  timeout,
		Run: func(ctx context.Context) error {
			if err := src.Refresh(ctx); err != nil {
				return fmt.Errorf("refresh folder tree: %w", err)
			}
			return nil
		},
	}
}

// StaleViewerFinder lists viewers whose data has not been touched since cutoff.
type StaleViewerFinder interface {
	StaleViewers(ctx context.Context, cutoff time.Time, limit int64) ([]string, error)
}

// ViewerPurger deletes everything stored for one viewer.
type ViewerPurger func(ctx context.Context, viewerID string) error

// pruneBatch caps how many viewers one run removes.
const pruneBatch = 500

// ViewerDataPruneJob removes the stored data of viewers idle for longer than
// retention. Viewer IDs are anonymous cookies, so abandoned ones never come
// back on their own.
func ViewerDataPruneJob(finder StaleViewerFinder, purge ViewerPurger, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:        ViewerDataPrune,
		Interval:    24 * time.Hour,
		SkipInitial: true,
		Run: func(ctx context.Context) error {
			ids, err := finder.StaleViewers(ctx, time.Now().Add(-retention), pruneBatch)
			if err != nil {
				return err
			}
			var errs []error
			pruned := 0
			for _, id := range ids {
				if err := purge(ctx, id); err != nil {
					errs = append(errs, fmt.Errorf("viewer %s: %w", id, err))
					continue
				}
				pruned++
			}
			if pruned > 0 {
				logger.Info("pruned idle viewers",
					zap.Int("pruned", pruned),
					zap.Duration("retention", retention))
			}
			return errors.Join(errs...)
		},
	}
}
