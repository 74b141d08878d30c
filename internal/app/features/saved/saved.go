// Package saved manages a viewer's saved videos and lists them like the
// library: IDs come from MongoDB, records from the backend batch endpoint.
package saved

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/ovaview/internal/app/features/errors"
	savedvideostore "github.com/dalemusser/ovaview/internal/app/store/savedvideos"
	"github.com/dalemusser/ovaview/internal/app/system/auth"
	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/app/system/inputval"
	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/dalemusser/ovaview/internal/app/system/listview"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/app/system/videolist"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Store persists saved video IDs.
type Store interface {
	Add(ctx context.Context, viewerID, videoID string) (savedvideostore.SavedVideo, error)
	Remove(ctx context.Context, viewerID, videoID string) error
	IDs(ctx context.Context, viewerID string) ([]string, error)
}

// Handler serves saved video requests.
type Handler struct {
	store    Store
	resolver videolist.BatchResolver
	coll     *collation.Collator
	pageSize int
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a saved Handler.
func NewHandler(store Store, resolver videolist.BatchResolver, coll *collation.Collator, pageSize int, logger *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		resolver: resolver,
		coll:     coll,
		pageSize: pageSize,
		errLog:   errorsfeature.NewErrorLogger(logger),
		logger:   logger,
	}
}

// Routes returns the saved router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireViewer)
	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Delete("/{videoID}", h.Remove)
	return r
}

// List serves GET /api/saved with the library query parameters. Before any
// sort is applied the base order is most recently saved first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	viewerID := auth.ViewerID(r.Context())
	q := r.URL.Query()
	st := videolist.LibraryCodec.Decode(q, h.pageSize)

	sctx, scancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "saved.ids")
	ids, err := h.store.IDs(sctx, viewerID)
	scancel()
	if err != nil {
		h.errLog.Log(r, "failed to load saved video ids", err)
		jsonutil.InternalError(w, "could not load saved videos")
		return
	}

	var records []models.Video
	if len(ids) > 0 {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "saved.batch")
		defer cancel()

		videos, err := h.resolver.VideosByIDs(ctx, ids)
		if err != nil {
			h.errLog.Upstream(r, "videos/batch", err)
			page, applied := listview.Empty(st)
			listview.Write(w, listview.New(page, applied, videolist.LibraryCodec, q), listview.NoticeUnavailable)
			return
		}
		records = videolist.OrderByIDs(videos, ids)
	}

	page, applied := videolist.Derive(records, st, h.coll)
	listview.Write(w, listview.New(page, applied, videolist.LibraryCodec, q), "")
}

type addRequest struct {
	VideoID string `json:"videoId" validate:"required,videoid" label:"Video ID"`
}

// Add serves POST /api/saved {"videoId": "..."}.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var in addRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, res.Fields())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "saved.add")
	defer cancel()

	sv, err := h.store.Add(ctx, auth.ViewerID(r.Context()), in.VideoID)
	if err != nil {
		if errors.Is(err, savedvideostore.ErrInvalidVideoID) {
			jsonutil.ValidationError(w, map[string]string{"videoId": "Video ID must be a video ID of at most 256 characters."})
			return
		}
		h.errLog.Log(r, "failed to save video", err)
		jsonutil.InternalError(w, "could not save video")
		return
	}
	jsonutil.Created(w, sv)
}

// Remove serves DELETE /api/saved/{videoID}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "saved.remove")
	defer cancel()

	if err := h.store.Remove(ctx, auth.ViewerID(r.Context()), videoID); err != nil {
		if errors.Is(err, savedvideostore.ErrNotFound) {
			jsonutil.NotFound(w, "video is not saved")
			return
		}
		h.errLog.Log(r, "failed to remove saved video", err)
		jsonutil.InternalError(w, "could not remove video")
		return
	}
	jsonutil.NoContent(w)
}
