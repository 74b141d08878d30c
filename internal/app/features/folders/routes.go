package folders

import (
	"net/http"

	"github.com/dalemusser/ovaview/internal/app/system/apicors"
	"github.com/dalemusser/ovaview/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns the viewer-facing folder routes.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/tree", h.Tree)
	return r
}

// OperatorRoutes returns the API-key protected refresh route. It carries its
// own CORS and no CSRF, since callers authenticate with a bearer key.
func OperatorRoutes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.Middleware())
	r.Use(auth.APIKeyAuth(apiKey, logger))
	r.Post("/", h.Refresh)
	return r
}
