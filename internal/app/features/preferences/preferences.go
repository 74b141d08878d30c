// Package preferences exposes the per-viewer settings object shared by all
// list pages: theme, view mode and display name.
package preferences

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/ovaview/internal/app/features/errors"
	"github.com/dalemusser/ovaview/internal/app/system/auth"
	"github.com/dalemusser/ovaview/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ovaview/internal/app/system/inputval"
	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Store loads and saves preferences.
type Store interface {
	Load(ctx context.Context, viewerID string) (models.Preferences, error)
	Save(ctx context.Context, viewerID string, p models.Preferences) (models.Preferences, error)
}

// Handler serves preference requests.
type Handler struct {
	store  Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a preferences Handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, errLog: errorsfeature.NewErrorLogger(logger), logger: logger}
}

// Routes returns the preferences router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireViewer)
	r.Get("/", h.Get)
	r.Put("/", h.Put)
	return r
}

// Get serves GET /api/preferences. Viewers without saved preferences get
// the defaults.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "preferences.load")
	defer cancel()

	p, err := h.store.Load(ctx, auth.ViewerID(r.Context()))
	if err != nil {
		h.errLog.Log(r, "failed to load preferences", err)
		jsonutil.InternalError(w, "could not load preferences")
		return
	}
	jsonutil.Data(w, p)
}

type putRequest struct {
	Theme       *string `json:"theme"`
	ViewMode    *string `json:"viewMode"`
	DisplayName *string `json:"displayName"`
}

// Put serves PUT /api/preferences. Omitted fields keep their stored value.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	var in putRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	if res := inputval.Validate(in.resolve()); res.HasErrors() {
		jsonutil.ValidationError(w, res.Fields())
		return
	}

	viewerID := auth.ViewerID(r.Context())
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.logger, "preferences.save")
	defer cancel()

	p, err := h.store.Load(ctx, viewerID)
	if err != nil {
		h.errLog.Log(r, "failed to load preferences", err)
		jsonutil.InternalError(w, "could not save preferences")
		return
	}
	if in.Theme != nil {
		p.Theme = *in.Theme
	}
	if in.ViewMode != nil {
		p.ViewMode = *in.ViewMode
	}
	if in.DisplayName != nil {
		p.DisplayName = htmlsanitize.SanitizeName(*in.DisplayName)
	}

	saved, err := h.store.Save(ctx, viewerID, p)
	if err != nil {
		h.errLog.Log(r, "failed to save preferences", err)
		jsonutil.InternalError(w, "could not save preferences")
		return
	}
	jsonutil.Data(w, saved)
}

// putFields is a putRequest with omitted fields filled by valid defaults,
// so only the values the viewer sent can fail.
type putFields struct {
	Theme    string `json:"theme"    validate:"required,oneof=system light dark" label:"Theme"`
	ViewMode string `json:"viewMode" validate:"required,oneof=grid list" label:"View mode"`
}

func (in putRequest) resolve() putFields {
	f := putFields{Theme: models.ThemeSystem, ViewMode: models.ViewModeGrid}
	if in.Theme != nil {
		f.Theme = *in.Theme
	}
	if in.ViewMode != nil {
		f.ViewMode = *in.ViewMode
	}
	return f
}
