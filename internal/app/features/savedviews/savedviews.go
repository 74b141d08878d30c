// Package savedviews lets a viewer name a list query and re-apply it later.
package savedviews

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	errorsfeature "github.com/dalemusser/ovaview/internal/app/features/errors"
	savedviewstore "github.com/dalemusser/ovaview/internal/app/store/savedviews"
	"github.com/dalemusser/ovaview/internal/app/system/auth"
	"github.com/dalemusser/ovaview/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ovaview/internal/app/system/inputval"
	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/app/system/videolist"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store persists saved views.
type Store interface {
	Create(ctx context.Context, in savedviewstore.CreateInput) (savedviewstore.SavedView, error)
	ListForViewer(ctx context.Context, viewerID, feature string) ([]savedviewstore.SavedView, error)
	GetDefault(ctx context.Context, viewerID, feature string) (*savedviewstore.SavedView, error)
	SetDefault(ctx context.Context, id primitive.ObjectID, viewerID string) error
	Delete(ctx context.Context, id primitive.ObjectID, viewerID string) error
}

// Handler serves saved view requests.
type Handler struct {
	store    Store
	pageSize int
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a savedviews Handler.
func NewHandler(store Store, pageSize int, logger *zap.Logger) *Handler {
	return &Handler{store: store, pageSize: pageSize, errLog: errorsfeature.NewErrorLogger(logger), logger: logger}
}

// Routes returns the savedviews router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireViewer)
	r.Get("/", h.List)
	r.Get("/default", h.Default)
	r.Post("/", h.Create)
	r.Post("/{id}/default", h.SetDefault)
	r.Delete("/{id}", h.Delete)
	return r
}

// List serves GET /api/views?feature=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	feature := query.Get(r, "feature")
	if feature != "" && !savedviewstore.ValidFeature(feature) {
		jsonutil.BadRequest(w, "unknown feature")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "savedviews.list")
	defer cancel()

	views, err := h.store.ListForViewer(ctx, auth.ViewerID(r.Context()), feature)
	if err != nil {
		h.errLog.Log(r, "failed to list saved views", err)
		jsonutil.InternalError(w, "could not load saved views")
		return
	}
	jsonutil.Data(w, views)
}

// Default serves GET /api/views/default?feature=. Shells call it when a
// feature page opens without query parameters; data is null when the viewer
// has no default for the feature.
func (h *Handler) Default(w http.ResponseWriter, r *http.Request) {
	feature := query.Get(r, "feature")
	if !savedviewstore.ValidFeature(feature) {
		jsonutil.BadRequest(w, "unknown feature")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "savedviews.default_get")
	defer cancel()

	view, err := h.store.GetDefault(ctx, auth.ViewerID(r.Context()), feature)
	if err != nil {
		h.errLog.Log(r, "failed to load default view", err)
		jsonutil.InternalError(w, "could not load default view")
		return
	}
	jsonutil.Data(w, view)
}

type createRequest struct {
	Feature   string `json:"feature"   validate:"required,oneof=library discover saved latest" label:"Feature"`
	Name      string `json:"name"      validate:"required" label:"Name"`
	Query     string `json:"query"     validate:"querystring" label:"Query"` // encoded query string, as returned by list endpoints
	IsDefault bool   `json:"isDefault"`
}

// CanonicalQuery keeps only the parameters a feature understands and
// rewrites them in canonical form. Unknown keys and default values drop out.
func CanonicalQuery(feature string, raw url.Values, pageSize int) map[string]string {
	codec := videolist.LibraryCodec
	keep := url.Values{}
	switch feature {
	case savedviewstore.FeatureLibrary:
		videolist.SetOptional(keep, videolist.KeyFolder, raw.Get(videolist.KeyFolder))
	case savedviewstore.FeatureDiscover:
		codec = videolist.DiscoverCodec
		videolist.SetFlag(keep, videolist.KeyTagsOnly, videolist.Flag(raw, videolist.KeyTagsOnly))
		videolist.SetFlag(keep, videolist.KeyAdvanced, videolist.Flag(raw, videolist.KeyAdvanced))
	}

	st := codec.Decode(raw, pageSize)
	st.Page = 1 // a saved view always opens on its first page
	if feature == savedviewstore.FeatureLatest {
		st = videolist.DefaultState(pageSize)
	}

	enc := codec.Encode(keep, st)
	out := make(map[string]string, len(enc))
	for k := range enc {
		out[k] = enc.Get(k)
	}
	return out
}

// Create serves POST /api/views.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in createRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	in.Name = htmlsanitize.SanitizeName(in.Name)
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, res.Fields())
		return
	}
	raw, _ := url.ParseQuery(in.Query)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "savedviews.create")
	defer cancel()

	view, err := h.store.Create(ctx, savedviewstore.CreateInput{
		ViewerID:  auth.ViewerID(r.Context()),
		Feature:   in.Feature,
		Name:      in.Name,
		Query:     CanonicalQuery(in.Feature, raw, h.pageSize),
		IsDefault: in.IsDefault,
	})
	if err != nil {
		if errors.Is(err, savedviewstore.ErrDuplicateName) {
			jsonutil.Conflict(w, err.Error())
			return
		}
		h.errLog.Log(r, "failed to create saved view", err)
		jsonutil.InternalError(w, "could not save view")
		return
	}
	jsonutil.Created(w, view)
}

func (h *Handler) viewID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, "saved view not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

// SetDefault serves POST /api/views/{id}/default.
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, ok := h.viewID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "savedviews.default")
	defer cancel()

	if err := h.store.SetDefault(ctx, id, auth.ViewerID(r.Context())); err != nil {
		if errors.Is(err, savedviewstore.ErrNotFound) {
			jsonutil.NotFound(w, "saved view not found")
			return
		}
		h.errLog.Log(r, "failed to set default view", err)
		jsonutil.InternalError(w, "could not update view")
		return
	}
	jsonutil.NoContent(w)
}

// Delete serves DELETE /api/views/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.viewID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "savedviews.delete")
	defer cancel()

	if err := h.store.Delete(ctx, id, auth.ViewerID(r.Context())); err != nil {
		if errors.Is(err, savedviewstore.ErrNotFound) {
			jsonutil.NotFound(w, "saved view not found")
			return
		}
		h.errLog.Log(r, "failed to delete saved view", err)
		jsonutil.InternalError(w, "could not delete view")
		return
	}
	jsonutil.NoContent(w)
}
