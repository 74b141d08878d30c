package foldertree

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"go.uber.org/zap"
)

// Static holds a tree built from a caller-supplied path list.
type Static struct {
	mu    sync.RWMutex
	coll  *collation.Collator
	paths []string
	tree  *models.FolderNode
}

// NewStatic returns a Static source with an empty tree.
func NewStatic(coll *collation.Collator) *Static {
	return &Static{coll: coll, tree: models.NewRootFolder()}
}

// SetPaths rebuilds the tree when paths differ from the current input.
// It reports whether a rebuild happened.
func (s *Static) SetPaths(paths []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paths != nil && slices.Equal(s.paths, paths) {
		return false
	}
	s.paths = slices.Clone(paths)
	if s.paths == nil {
		s.paths = []string{}
	}
	s.tree = Build(s.paths, s.coll)
	return true
}

// Tree returns the current tree. Callers must not modify it.
func (s *Static) Tree() *models.FolderNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// FolderLister is the backend call the Fetching source depends on.
type FolderLister interface {
	ListFolders(ctx context.Context) ([]string, error)
}

// Fetching owns the folder tree for a shell and refreshes it from the backend.
type Fetching struct {
	lister FolderLister
	coll   *collation.Collator
	logger *zap.Logger

	refreshMu sync.Mutex // one refresh in flight

	mu          sync.RWMutex
	tree        *models.FolderNode
	loading     bool
	lastErr     error
	refreshedAt time.Time
}

// NewFetching returns a Fetching source with an empty tree. Call Refresh to
// load it.
func NewFetching(lister FolderLister, coll *collation.Collator, logger *zap.Logger) *Fetching {
	return &Fetching{
		lister: lister,
		coll:   coll,
		logger: logger,
		tree:   models.NewRootFolder(),
	}
}

// Refresh fetches the folder list and rebuilds the tree. On failure the tree
// is reset to an empty root and the error is returned; there is no retry.
func (f *Fetching) Refresh(ctx context.Context) error {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	f.setLoading(true)
	paths, err := f.lister.ListFolders(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	f.lastErr = err
	if err != nil {
		f.tree = models.NewRootFolder()
		f.logger.Warn("folder tree refresh failed", zap.Error(err))
		return err
	}
	f.tree = Build(paths, f.coll)
	f.refreshedAt = time.Now().UTC()
	f.logger.Debug("folder tree refreshed", zap.Int("folders", f.tree.Count()))
	return nil
}

func (f *Fetching) setLoading(v bool) {
	f.mu.Lock()
	f.loading = v
	f.mu.Unlock()
}

// Tree returns the current tree. Callers must not modify it.
func (f *Fetching) Tree() *models.FolderNode {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tree
}

// Loading reports whether a refresh is in flight.
func (f *Fetching) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

// LastError returns the error from the most recent refresh, or nil.
func (f *Fetching) LastError() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastErr
}

// RefreshedAt returns the time of the last successful refresh.
func (f *Fetching) RefreshedAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.refreshedAt
}
