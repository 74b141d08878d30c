package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/dalemusser/ovaview/internal/app/system/network"
	"go.uber.org/zap"
)

// APIKeyAuth guards operator routes such as the folder tree refresh. Callers
// send "Authorization: Bearer <key>"; anything else gets a 401 JSON error.
// An empty operatorKey disables the routes entirely.
func APIKeyAuth(operatorKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	if operatorKey == "" {
		logger.Warn("operator api key unset; operator routes are disabled")
	}
	want := []byte(operatorKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(msg string, level func(string, ...zap.Field)) {
				level("operator request rejected",
					zap.String("reason", msg),
					zap.String("path", r.URL.Path),
					zap.String("client_ip", network.ClientIP(r)),
				)
				jsonutil.Error(w, http.StatusUnauthorized, msg)
			}

			if len(want) == 0 {
				reject("operator access is not configured", logger.Warn)
				return
			}

			scheme, key, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				reject("expected Authorization: Bearer <key>", logger.Debug)
				return
			}
			if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(key)), want) != 1 {
				reject("invalid operator key", logger.Warn)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
