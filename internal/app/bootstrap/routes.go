// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	discoverfeature "github.com/dalemusser/ovaview/internal/app/features/discover"
	errorsfeature "github.com/dalemusser/ovaview/internal/app/features/errors"
	foldersfeature "github.com/dalemusser/ovaview/internal/app/features/folders"
	healthfeature "github.com/dalemusser/ovaview/internal/app/features/health"
	latestfeature "github.com/dalemusser/ovaview/internal/app/features/latest"
	libraryfeature "github.com/dalemusser/ovaview/internal/app/features/library"
	preferencesfeature "github.com/dalemusser/ovaview/internal/app/features/preferences"
	savedfeature "github.com/dalemusser/ovaview/internal/app/features/saved"
	savedviewsfeature "github.com/dalemusser/ovaview/internal/app/features/savedviews"
	sessionfeature "github.com/dalemusser/ovaview/internal/app/features/session"
	preferencestore "github.com/dalemusser/ovaview/internal/app/store/preferences"
	savedvideostore "github.com/dalemusser/ovaview/internal/app/store/savedvideos"
	savedviewstore "github.com/dalemusser/ovaview/internal/app/store/savedviews"
	"github.com/dalemusser/ovaview/internal/app/system/auth"
	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/dalemusser/ovaview/internal/app/system/network"
	"github.com/dalemusser/ovaview/internal/app/system/videolist"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// Two kinds of routes share the router:
//   - Viewer routes under /api: anonymous viewer cookie + CSRF on mutations
//   - Operator routes (/api/folders/refresh): API key auth, permissive CORS, no CSRF
//
// Health endpoints sit outside both so health checks need neither cookie nor key.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	savedStore := savedvideostore.New(deps.MongoDatabase)
	viewStore := savedviewstore.New(deps.MongoDatabase)
	prefStore := preferencestore.New(deps.MongoDatabase)
	latestPager := videolist.NewBucketPager(deps.OVA, deps.OVA, appCfg.LatestBucketSize)

	h := handlers{
		health:      healthfeature.NewHandler(deps.MongoClient, deps.Folders, logger),
		folders:     foldersfeature.NewHandler(deps.Folders, logger),
		library:     libraryfeature.NewHandler(deps.OVA, deps.Collator, appCfg.PageSize, logger),
		discover:    discoverfeature.NewHandler(deps.OVA, deps.Collator, appCfg.PageSize, logger),
		saved:       savedfeature.NewHandler(savedStore, deps.OVA, deps.Collator, appCfg.PageSize, logger),
		latest:      latestfeature.NewHandler(latestPager, logger),
		preferences: preferencesfeature.NewHandler(prefStore, logger),
		savedViews:  savedviewsfeature.NewHandler(viewStore, appCfg.PageSize, logger),
		session:     sessionfeature.NewHandler(sessionMgr, logger),
	}

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	mountRoutes(r, h, routeOptions{
		viewer: sessionMgr.EnsureViewer,
		csrf:   csrfMiddleware(appCfg.CSRFKey, secure, logger),
		apiKey: appCfg.APIKey,
		logger: logger,
	})

	return r, nil
}

// handlers bundles the feature handlers mounted by mountRoutes.
type handlers struct {
	health      *healthfeature.Handler
	folders     *foldersfeature.Handler
	library     *libraryfeature.Handler
	discover    *discoverfeature.Handler
	saved       *savedfeature.Handler
	latest      *latestfeature.Handler
	preferences *preferencesfeature.Handler
	savedViews  *savedviewsfeature.Handler
	session     *sessionfeature.Handler
}

type routeOptions struct {
	viewer func(http.Handler) http.Handler
	csrf   func(http.Handler) http.Handler
	apiKey string
	logger *zap.Logger
}

// mountRoutes attaches every feature router to r.
func mountRoutes(r chi.Router, h handlers, opts routeOptions) {
	// Health checks (no auth required)
	r.Mount("/health", healthfeature.Routes(h.health))
	healthfeature.MountRootEndpoints(r, h.health)

	// Operator API: registered before the /api/folders viewer mount so the
	// more specific pattern wins.
	r.Mount("/api/folders/refresh", foldersfeature.OperatorRoutes(h.folders, opts.apiKey, opts.logger))

	// Viewer API
	r.Group(func(vr chi.Router) {
		vr.Use(opts.viewer)
		vr.Use(opts.csrf)

		vr.Mount("/api/session", sessionfeature.Routes(h.session))
		vr.Mount("/api/folders", foldersfeature.Routes(h.folders))
		vr.Mount("/api/library", libraryfeature.Routes(h.library))
		vr.Mount("/api/discover", discoverfeature.Routes(h.discover))
		vr.Mount("/api/saved", savedfeature.Routes(h.saved))
		vr.Mount("/api/latest", latestfeature.Routes(h.latest))
		vr.Mount("/api/preferences", preferencesfeature.Routes(h.preferences))
		vr.Mount("/api/views", savedviewsfeature.Routes(h.savedViews))
	})

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)
}

// csrfMiddleware returns gorilla/csrf protection for the viewer API. Shells
// fetch the token from GET /api/session and send it in the X-CSRF-Token
// header. Cookie name is "ovaview_csrf" to avoid collisions with other
// services on the same domain.
func csrfMiddleware(key string, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("ovaview_csrf"),
		csrf.RequestHeader(sessionfeature.CSRFHeader),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("client_ip", network.ClientIP(req)),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			jsonutil.Error(w, http.StatusForbidden, "CSRF token invalid or missing")
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	protect := csrf.Protect([]byte(key), csrfOpts...)

	if secure {
		return protect
	}
	// Plain-HTTP dev servers: tell gorilla/csrf to skip the HTTPS-only
	// Referer check.
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(req))
		})
	}
}
