// Package discover runs backend search and pages the results locally.
//
// The search term goes to the backend, either as free text or, with
// tagsOnly, as a tag list. Resolution, duration and date filters apply to
// the results only when adv (advanced) is on.
package discover

import (
	"context"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/ovaview/internal/app/features/errors"
	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/app/system/listview"
	"github.com/dalemusser/ovaview/internal/app/system/ovaclient"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/app/system/videolist"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Searcher runs a backend search.
type Searcher interface {
	Search(ctx context.Context, in ovaclient.SearchRequest) ([]models.Video, error)
}

// Handler serves discover searches.
type Handler struct {
	src      Searcher
	coll     *collation.Collator
	pageSize int
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a discover Handler.
func NewHandler(src Searcher, coll *collation.Collator, pageSize int, logger *zap.Logger) *Handler {
	return &Handler{
		src:      src,
		coll:     coll,
		pageSize: pageSize,
		errLog:   errorsfeature.NewErrorLogger(logger),
		logger:   logger,
	}
}

// Routes returns the discover router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Search)
	return r
}

// SplitTags turns "a, b  c" into [a b c]. Empty entries are dropped.
func SplitTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Search serves GET /api/discover?q=&tagsOnly=&adv=&page=&sort=&res=&dur=&from=&to=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := videolist.DiscoverCodec.Decode(q, h.pageSize)
	st.SearchTerm = strings.TrimSpace(st.SearchTerm)

	tagsOnly := videolist.Flag(q, videolist.KeyTagsOnly)
	advanced := videolist.Flag(q, videolist.KeyAdvanced)
	videolist.SetFlag(q, videolist.KeyTagsOnly, tagsOnly)
	videolist.SetFlag(q, videolist.KeyAdvanced, advanced)
	if !advanced {
		st = st.WithoutAttributeFilters()
	}

	term := st.SearchTerm
	respond := func(page videolist.Page, applied videolist.State, notice string) {
		applied.SearchTerm = term
		listview.Write(w, listview.New(page, applied, videolist.DiscoverCodec, q), notice)
	}

	req := ovaclient.SearchRequest{Query: term}
	if tagsOnly {
		req = ovaclient.SearchRequest{Tags: SplitTags(term)}
	}
	// A tag term made only of separators counts as empty.
	if term == "" || (tagsOnly && len(req.Tags) == 0) {
		page, applied := listview.Empty(st)
		respond(page, applied, listview.NoticeSearchEmpty)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.logger, "discover.search")
	defer cancel()

	results, err := h.src.Search(ctx, req)
	if err != nil {
		h.errLog.Upstream(r, "search", err)
		page, applied := listview.Empty(st)
		respond(page, applied, listview.NoticeUnavailable)
		return
	}

	// The backend already matched the term; local derivation only filters,
	// sorts and pages.
	local := st
	local.SearchTerm = ""
	page, applied := videolist.Derive(results, local, h.coll)
	respond(page, applied, "")
}
