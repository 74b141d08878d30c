// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/dalemusser/ovaview/internal/app/system/network"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures with the request they belong to.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

func requestFields(r *http.Request) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", network.ClientIP(r)),
	}
}

// Log records a server-side failure (store errors, encode errors).
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.LogWithFields(r, msg, err)
}

// LogWithFields is Log with extra context such as the viewer or view ID.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	fields = append(append(requestFields(r), zap.Error(err)), fields...)
	e.logger.Error(msg, fields...)
}

// Upstream records a failed OVA backend call. Viewers see these as a notice
// on an empty page, so they log at warn.
func (e *ErrorLogger) Upstream(r *http.Request, op string, err error) {
	fields := append(requestFields(r), zap.String("op", op), zap.Error(err))
	e.logger.Warn("upstream request failed", fields...)
}

// NotFound answers unknown routes with a JSON 404.
func NotFound(w http.ResponseWriter, r *http.Request) {
	jsonutil.NotFound(w, "no route for "+r.URL.Path)
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonutil.Error(w, http.StatusMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
}
