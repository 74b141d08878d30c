// Package apicors answers cross-origin calls to the operator routes.
//
// Operator callers (deploy hooks, schedulers, admin pages on other hosts)
// authenticate with a bearer key rather than a cookie, so any origin may
// call them and no credentials are allowed.
package apicors

import "net/http"

const (
	allowMethods = "POST, OPTIONS"
	allowHeaders = "Authorization, Content-Type"
	preflightTTL = "600"
)

// Middleware sets the operator CORS headers and short-circuits preflights
// with 204 before authentication runs.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", preflightTTL)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
