// Package folders serves the folder tree used by the library sidebar.
//
// Endpoints (mounted at /api/folders):
//   - GET  /tree?folder=<path>  annotated tree, breadcrumbs and loading flag
//   - POST /refresh             reload from the backend (API key)
package folders

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/ovaview/internal/app/system/folderpath"
	"github.com/dalemusser/ovaview/internal/app/system/foldertree"
	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/dalemusser/ovaview/internal/app/system/listview"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/app/system/videolist"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Source is the cached folder tree.
type Source interface {
	Tree() *models.FolderNode
	Loading() bool
	LastError() error
	RefreshedAt() time.Time
	Refresh(ctx context.Context) error
}

// Handler serves folder tree requests.
type Handler struct {
	src    Source
	logger *zap.Logger
}

// NewHandler creates a folders Handler.
func NewHandler(src Source, logger *zap.Logger) *Handler {
	return &Handler{src: src, logger: logger}
}

// TreeResponse is the payload of GET /tree.
type TreeResponse struct {
	Tree        *foldertree.NodeView `json:"tree"`
	Current     string               `json:"current"`
	Breadcrumbs []folderpath.Crumb   `json:"breadcrumbs"`
	Known       bool                 `json:"known"` // current names a node in the tree
	Loading     bool                 `json:"loading"`
	Count       int                  `json:"count"`
}

// Tree serves the annotated folder tree. A failed last refresh yields the
// empty root tree and a notice.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	current := folderpath.Clean(query.Get(r, videolist.KeyFolder))
	root := h.src.Tree()

	resp := TreeResponse{
		Tree:        foldertree.Annotate(root, current),
		Current:     current,
		Breadcrumbs: folderpath.Breadcrumbs(current),
		Known:       foldertree.Contains(root, current),
		Loading:     h.src.Loading(),
		Count:       root.Count(),
	}

	notice := ""
	if h.src.LastError() != nil {
		notice = listview.NoticeUnavailable
	}
	jsonutil.DataWithNotice(w, resp, notice)
}

// RefreshResponse is the payload of POST /refresh.
type RefreshResponse struct {
	Count       int       `json:"count"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Refresh reloads the tree now instead of waiting for the background job.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Refresh(), h.logger, "folders.refresh")
	defer cancel()

	err := h.src.Refresh(ctx)
	resp := RefreshResponse{Count: h.src.Tree().Count(), RefreshedAt: h.src.RefreshedAt()}
	if err != nil {
		h.logger.Warn("manual folder refresh failed", zap.Error(err))
		jsonutil.DataWithNotice(w, resp, listview.NoticeUnavailable)
		return
	}
	h.logger.Info("folder tree refreshed on request", zap.Int("folders", resp.Count))
	jsonutil.Data(w, resp)
}
