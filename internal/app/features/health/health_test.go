package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context, rp *readpref.ReadPref) error { return f.err }

type fakeFolders struct {
	loading bool
	err     error
	at      time.Time
}

func (f fakeFolders) Loading() bool          { return f.loading }
func (f fakeFolders) LastError() error       { return f.err }
func (f fakeFolders) RefreshedAt() time.Time { return f.at }

func check(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec.Code, resp
}

func TestHandler_Check(t *testing.T) {
	refreshed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		mongoErr    error
		folders     FolderStatus
		wantCode    int
		wantStatus  string
		wantFolders string
	}{
		{"all ok", nil, fakeFolders{at: refreshed}, http.StatusOK, "ok", "ok"},
		{"backend down", nil, fakeFolders{err: errors.New("502")}, http.StatusOK, "degraded", "unavailable"},
		{"loading", nil, fakeFolders{loading: true}, http.StatusOK, "ok", "loading"},
		{"mongo down", errors.New("no servers"), fakeFolders{}, http.StatusServiceUnavailable, "unavailable", "ok"},
		{"no folder source", nil, nil, http.StatusOK, "ok", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(fakePinger{tt.mongoErr}, tt.folders, zap.NewNop())
			code, resp := check(t, h)
			if code != tt.wantCode {
				t.Errorf("status code = %d, want %d", code, tt.wantCode)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.Services["ova_folders"] != tt.wantFolders {
				t.Errorf("ova_folders = %q, want %q", resp.Services["ova_folders"], tt.wantFolders)
			}
		})
	}
}

func TestHandler_Check_RefreshedAt(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, resp := check(t, NewHandler(fakePinger{}, fakeFolders{at: at}, zap.NewNop()))
	if resp.FoldersRefreshedAt == nil || !resp.FoldersRefreshedAt.Equal(at) {
		t.Errorf("foldersRefreshedAt = %v, want %v", resp.FoldersRefreshedAt, at)
	}
}

func TestHandler_Ready(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(fakePinger{}, nil, zap.NewNop()).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Ready() status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHandler(fakePinger{errors.New("down")}, nil, zap.NewNop()).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Ready() status = %d, want 503", rec.Code)
	}
}

func TestRoutesAndRootEndpoints(t *testing.T) {
	h := NewHandler(fakePinger{}, nil, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/health", Routes(h))
	MountRootEndpoints(r, h)

	for _, path := range []string{"/health", "/health/ready", "/health/live", "/ready", "/readyz", "/livez"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}
