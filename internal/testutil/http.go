package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/ovaview/internal/app/system/auth"
)

// NewRequest creates an HTTP request for testing. body may be "".
func NewRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewViewerRequest creates an HTTP request carrying viewerID in its context,
// bypassing the viewer cookie middleware.
func NewViewerRequest(method, target, viewerID, body string) *http.Request {
	return auth.WithViewer(NewRequest(method, target, body), viewerID)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	body := r.Body.String()
	if !strings.Contains(body, expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// AssertJSON checks the Content-Type header.
func (r *ResponseRecorder) AssertJSON(t interface{ Errorf(string, ...any) }) {
	if ct := r.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type: got %q, want application/json", ct)
	}
}

// Cookie returns the response cookie called name, or nil.
func (r *ResponseRecorder) Cookie(name string) *http.Cookie {
	for _, c := range r.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
