// Package session tells a shell who the current viewer is and hands it the
// CSRF token it must echo on mutating requests.
package session

import (
	"net/http"

	"github.com/dalemusser/ovaview/internal/app/system/auth"
	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// CSRFHeader is the request header gorilla/csrf reads the token from.
const CSRFHeader = "X-CSRF-Token"

// Handler serves the viewer session endpoints.
type Handler struct {
	sm     *auth.SessionManager
	logger *zap.Logger
}

// NewHandler creates a session Handler.
func NewHandler(sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{sm: sm, logger: logger}
}

// Routes returns the session router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Delete("/", h.Reset)
	return r
}

// Response is the payload of GET /api/session.
type Response struct {
	ViewerID   string `json:"viewerId"`
	CSRFToken  string `json:"csrfToken"`
	CSRFHeader string `json:"csrfHeader"`
}

// Get serves GET /api/session.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	jsonutil.Data(w, Response{
		ViewerID:   auth.ViewerID(r.Context()),
		CSRFToken:  csrf.Token(r),
		CSRFHeader: CSRFHeader,
	})
}

// Reset serves DELETE /api/session. The viewer cookie is dropped and the next
// request starts a new anonymous viewer; stored data for the old one is left
// for the prune job.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("viewer reset", zap.String("viewer_id", auth.ViewerID(r.Context())))
	h.sm.Forget(w, r)
	jsonutil.NoContent(w)
}
