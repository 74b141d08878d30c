package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"] != "no route for /api/nope" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/api/saved", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestErrorLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	el := NewErrorLogger(zap.New(core))
	req := httptest.NewRequest(http.MethodGet, "/api/library", nil)

	el.Log(req, "store failed", errors.New("boom"))
	el.LogWithFields(req, "store failed", errors.New("boom"), zap.String("viewer_id", "v"))
	el.Upstream(req, "videos", errors.New("502"))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("logged %d entries, want 3", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel || entries[0].ContextMap()["path"] != "/api/library" {
		t.Errorf("entry[0] = %+v", entries[0])
	}
	if entries[1].ContextMap()["viewer_id"] != "v" {
		t.Errorf("entry[1] fields = %v", entries[1].ContextMap())
	}
	if entries[2].Level != zapcore.WarnLevel || entries[2].ContextMap()["op"] != "videos" {
		t.Errorf("entry[2] = %+v", entries[2])
	}
}
