package apicors

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusAccepted)
	})
	h := Middleware()(next)

	tests := []struct {
		method      string
		wantStatus  int
		wantReached bool
	}{
		{http.MethodOptions, http.StatusNoContent, false},
		{http.MethodPost, http.StatusAccepted, true},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(tt.method, "/api/folders/refresh", nil)
			req.Header.Set("Origin", "https://ops.example.org")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if reached != tt.wantReached {
				t.Errorf("next reached = %v, want %v", reached, tt.wantReached)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Allow-Origin = %q", got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != allowMethods {
				t.Errorf("Allow-Methods = %q", got)
			}
		})
	}
}
