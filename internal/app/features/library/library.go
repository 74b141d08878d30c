// Package library lists the videos of one folder with client-side search,
// filters, sort and pagination.
package library

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/ovaview/internal/app/features/errors"
	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/app/system/folderpath"
	"github.com/dalemusser/ovaview/internal/app/system/listview"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/app/system/videolist"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// VideoSource loads every video in a folder.
type VideoSource interface {
	VideosInFolder(ctx context.Context, folder string) ([]models.Video, error)
}

// Handler serves the library list.
type Handler struct {
	src      VideoSource
	coll     *collation.Collator
	pageSize int
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a library Handler.
func NewHandler(src VideoSource, coll *collation.Collator, pageSize int, logger *zap.Logger) *Handler {
	return &Handler{
		src:      src,
		coll:     coll,
		pageSize: pageSize,
		errLog:   errorsfeature.NewErrorLogger(logger),
		logger:   logger,
	}
}

// Routes returns the library router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// List serves GET /api/library?folder=&page=&search=&sort=&res=&dur=&from=&to=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := videolist.LibraryCodec.Decode(q, h.pageSize)

	folder := folderpath.Clean(q.Get(videolist.KeyFolder))
	videolist.SetOptional(q, videolist.KeyFolder, folder)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "library.videos")
	defer cancel()

	records, err := h.src.VideosInFolder(ctx, folder)
	if err != nil {
		h.errLog.Upstream(r, "videos", err)
		page, applied := listview.Empty(st)
		listview.Write(w, listview.New(page, applied, videolist.LibraryCodec, q), listview.NoticeUnavailable)
		return
	}

	page, applied := videolist.Derive(records, st, h.coll)
	listview.Write(w, listview.New(page, applied, videolist.LibraryCodec, q), "")
}
