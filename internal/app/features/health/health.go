// internal/app/features/health/health.go
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// FolderStatus reports the state of the cached folder tree.
type FolderStatus interface {
	Loading() bool
	LastError() error
	RefreshedAt() time.Time
}

// Handler provides health check endpoints.
type Handler struct {
	mongo   Pinger
	folders FolderStatus
	logger  *zap.Logger
}

// NewHandler creates a health Handler. folders may be nil.
func NewHandler(mongo Pinger, folders FolderStatus, logger *zap.Logger) *Handler {
	return &Handler{mongo: mongo, folders: folders, logger: logger}
}

// Response is the body of /health.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
	// FoldersRefreshedAt is omitted until the first successful refresh.
	FoldersRefreshedAt *time.Time `json:"foldersRefreshedAt,omitempty"`
}

// Routes returns a chi.Router with /, /ready and /live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the Kubernetes health check paths to the root router.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// Check reports MongoDB and folder backend state. Only a Mongo failure makes
// the service unavailable; a backend failure degrades it, since list pages
// still answer with an empty result and a notice.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{Status: "ok", Services: map[string]string{}}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.mongo.Ping(ctx, readpref.Primary()); err != nil {
		resp.Status = "unavailable"
		resp.Services["mongodb"] = "unavailable"
		h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
	} else {
		resp.Services["mongodb"] = "ok"
	}

	if h.folders != nil {
		switch {
		case h.folders.Loading():
			resp.Services["ova_folders"] = "loading"
		case h.folders.LastError() != nil:
			resp.Services["ova_folders"] = "unavailable"
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		default:
			resp.Services["ova_folders"] = "ok"
		}
		if at := h.folders.RefreshedAt(); !at.IsZero() {
			resp.FoldersRefreshedAt = &at
		}
	}

	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	jsonutil.JSON(w, status, resp)
}

// Ready is the readiness check.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.mongo.Ping(ctx, readpref.Primary()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	jsonutil.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Live is the liveness check.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
