// Package latest pages the newest uploads using backend-side pagination.
// Unlike the other lists there is no search, filter or sort: each page is a
// bucket of IDs fetched from the backend and resolved in one batch call.
package latest

import (
	"net/http"
	"strconv"

	errorsfeature "github.com/dalemusser/ovaview/internal/app/features/errors"
	"github.com/dalemusser/ovaview/internal/app/system/listview"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/app/system/videolist"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the latest uploads list.
type Handler struct {
	pager  *videolist.BucketPager
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a latest Handler.
func NewHandler(pager *videolist.BucketPager, logger *zap.Logger) *Handler {
	return &Handler{
		pager:  pager,
		errLog: errorsfeature.NewErrorLogger(logger),
		logger: logger,
	}
}

// Routes returns the latest router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// List serves GET /api/latest?page=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get(videolist.KeyPage))
	if err != nil || page < 1 {
		page = 1
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "latest.fetch")
	defer cancel()

	p, err := h.pager.Fetch(ctx, page)
	notice := ""
	if err != nil {
		h.errLog.Upstream(r, "videos/latest", err)
		notice = listview.NoticeUnavailable
	}

	st := videolist.DefaultState(h.pager.PageSize())
	st.Page = p.Page
	listview.Write(w, listview.New(p, st, videolist.LibraryCodec, q), notice)
}
