package auth

// Terminology: Viewer Identifiers
//   - ViewerID / viewerID / viewer_id: an opaque UUID minted on first visit and
//     kept in a signed cookie. There are no accounts; the viewer ID only scopes
//     saved videos, saved views and preferences.

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/dalemusser/ovaview/internal/app/system/network"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	viewerIDKey = "viewer_id"
	issuedAtKey = "issued_at"

	// DefaultSessionName is the cookie name used when none is configured.
	DefaultSessionName = "ovaview-viewer"

	minKeyLength = 32
)

var (
	// ErrNoSessionKey means no cookie signing key was configured.
	ErrNoSessionKey = errors.New("session key is empty; provide 32+ random chars")
	// ErrWeakSessionKey means a short or placeholder key was given while
	// cookies are marked Secure.
	ErrWeakSessionKey = errors.New("session key too weak for production; provide 32+ random chars")
)

// SessionManager issues and reads the anonymous viewer cookie.
type SessionManager struct {
	store  *sessions.CookieStore
	logger *zap.Logger
	name   string
}

// NewSessionManager builds the viewer cookie store. secure marks cookies
// Secure and also makes a weak sessionKey fatal instead of a warning.
func NewSessionManager(sessionKey, name string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, ErrNoSessionKey
	}
	if weak := len(sessionKey) < minKeyLength || isDefaultKey(sessionKey); weak {
		if secure {
			return nil, ErrWeakSessionKey
		}
		logger.Warn("weak session key accepted outside production", zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	logger.Info("viewer cookie configured",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, logger: logger, name: name}, nil
}

// SessionName returns the configured cookie name.
func (sm *SessionManager) SessionName() string {
	return sm.name
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// EnsureViewer loads the viewer ID from the cookie, minting and saving a new
// one when the cookie is missing or unreadable. Every request that passes
// through carries a viewer ID in its context.
func (sm *SessionManager) EnsureViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			sm.logCookieProblem(r, err)
		}

		id, _ := sess.Values[viewerIDKey].(string)
		if _, perr := uuid.Parse(id); perr != nil {
			id = uuid.NewString()
			sess.Values[viewerIDKey] = id
			sess.Values[issuedAtKey] = time.Now().UTC().Unix()
			if err := sess.Save(r, w); err != nil {
				sm.logger.Error("failed to save viewer cookie",
					zap.Error(err),
					zap.String("path", r.URL.Path))
			} else {
				sm.logger.Debug("issued viewer id",
					zap.String("viewer_id", id),
					zap.String("path", r.URL.Path))
			}
		}

		next.ServeHTTP(w, WithViewer(r, id))
	})
}

// Forget clears the viewer cookie. The next request gets a fresh viewer ID.
func (sm *SessionManager) Forget(w http.ResponseWriter, r *http.Request) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return
	}
	delete(sess.Values, viewerIDKey)
	delete(sess.Values, issuedAtKey)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

// logCookieProblem reports why an incoming cookie was unusable. Only a bad
// MAC is worth a warning; the rest happen in normal operation.
func (sm *SessionManager) logCookieProblem(r *http.Request, err error) {
	problem := diagnose(err)
	fields := []zap.Field{zap.String("problem", string(problem)), zap.String("path", r.URL.Path)}
	switch problem {
	case cookieExpired:
		sm.logger.Debug("viewer cookie unusable; reissuing", fields...)
	case cookieTampered:
		sm.logger.Warn("viewer cookie failed MAC check",
			append(fields, zap.String("client_ip", network.ClientIP(r)), zap.String("user_agent", r.UserAgent()))...)
	case cookieCorrupt:
		sm.logger.Info("viewer cookie unusable; reissuing", fields...)
	default:
		sm.logger.Warn("viewer cookie error; reissuing", append(fields, zap.Error(err))...)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Context helpers                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const viewerCtxKey ctxKey = "viewerID"

// WithViewer returns r carrying viewerID. Handlers tests use it to skip the
// cookie round trip.
func WithViewer(r *http.Request, viewerID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), viewerCtxKey, viewerID))
}

// ViewerID returns the viewer ID stored in ctx, or "" when there is none.
func ViewerID(ctx context.Context) string {
	id, _ := ctx.Value(viewerCtxKey).(string)
	return id
}

// RequireViewer rejects requests that reached it without a viewer ID.
func RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ViewerID(r.Context()) == "" {
			jsonutil.Error(w, http.StatusUnauthorized, "no viewer")
			return
		}
		next.ServeHTTP(w, r)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

var placeholderKeyHints = []string{"dev-only", "change-me", "placeholder", "default", "example", "insecure", "test-key", "password"}

// isDefaultKey reports keys that look copied from sample configuration.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	return slices.ContainsFunc(placeholderKeyHints, func(hint string) bool {
		return strings.Contains(lower, hint)
	})
}

type cookieProblem string

const (
	cookieNone     cookieProblem = "none"
	cookieExpired  cookieProblem = "expired"
	cookieTampered cookieProblem = "mac_invalid"
	cookieCorrupt  cookieProblem = "undecodable"
	cookieStore    cookieProblem = "store"
)

// diagnose sorts a cookie store error. Only securecookie decode errors say
// anything about the cookie itself.
func diagnose(err error) cookieProblem {
	if err == nil {
		return cookieNone
	}
	var sc securecookie.Error
	if !errors.As(err, &sc) || !sc.IsDecode() {
		return cookieStore
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "expired timestamp"):
		return cookieExpired
	case strings.Contains(msg, "not valid"), strings.Contains(msg, "mac"):
		// securecookie reports a bad HMAC as "the value is not valid"
		return cookieTampered
	default:
		return cookieCorrupt
	}
}
