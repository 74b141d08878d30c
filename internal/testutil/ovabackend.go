package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/ovaview/internal/domain/models"
)

// FakeOVA is an in-process OVA backend serving the REST contract the
// service consumes. Fields may be changed between requests under Lock.
type FakeOVA struct {
	Server *httptest.Server

	mu sync.Mutex

	Folders  []string
	ByFolder map[string][]models.Video
	Library  []models.Video // newest first; backs /videos/latest and /videos/batch

	// LegacyEnvelope answers GET /videos with {"data": [...]}.
	LegacyEnvelope bool
	// FailStatus, when non-zero, is returned for every request.
	FailStatus int

	requests []string
	lastBody map[string]json.RawMessage
}

// NewFakeOVA starts a fake backend that is closed when the test ends.
func NewFakeOVA(t *testing.T) *FakeOVA {
	t.Helper()
	f := &FakeOVA{
		ByFolder: map[string][]models.Video{},
		lastBody: map[string]json.RawMessage{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/folders", f.folders)
	mux.HandleFunc("/videos", f.videos)
	mux.HandleFunc("/videos/batch", f.batch)
	mux.HandleFunc("/videos/latest", f.latest)
	mux.HandleFunc("/search", f.search)
	f.Server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the backend base URL.
func (f *FakeOVA) URL() string {
	return f.Server.URL
}

// Lock and Unlock guard the exported fields while a server is running.
func (f *FakeOVA) Lock()   { f.mu.Lock() }
func (f *FakeOVA) Unlock() { f.mu.Unlock() }

// Requests returns "METHOD /path?query" for each request received.
func (f *FakeOVA) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// LastBody returns the JSON body of the last request to path.
func (f *FakeOVA) LastBody(path string) json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody[path]
}

func (f *FakeOVA) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		line := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			line += "?" + r.URL.RawQuery
		}
		f.requests = append(f.requests, line)
		fail := f.FailStatus
		f.mu.Unlock()

		if fail != 0 {
			http.Error(w, `{"error":"forced failure"}`, fail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeOVA) readBody(r *http.Request, v any) error {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return err
	}
	f.mu.Lock()
	f.lastBody[r.URL.Path] = raw
	f.mu.Unlock()
	return json.Unmarshal(raw, v)
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (f *FakeOVA) folders(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeData(w, f.Folders)
}

func (f *FakeOVA) videos(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	videos := f.ByFolder[r.URL.Query().Get("folder")]
	if videos == nil {
		videos = []models.Video{}
	}
	if f.LegacyEnvelope {
		writeData(w, videos)
		return
	}
	writeData(w, map[string]any{"videos": videos})
}

func (f *FakeOVA) batch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs []string `json:"ids"`
	}
	if err := f.readBody(r, &in); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range in.IDs {
		want[id] = true
	}
	out := []models.Video{}
	for _, v := range f.Library {
		if want[v.VideoID] {
			out = append(out, v)
		}
	}
	writeData(w, out)
}

func (f *FakeOVA) latest(w http.ResponseWriter, r *http.Request) {
	start, _ := strconv.Atoi(r.URL.Query().Get("start"))
	end, _ := strconv.Atoi(r.URL.Query().Get("end"))

	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.Library)
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	ids := make([]string, 0, end-start)
	for _, v := range f.Library[start:end] {
		ids = append(ids, v.VideoID)
	}
	writeData(w, map[string]any{"videoIds": ids, "totalVideos": n})
}

// search matches query against titles and tags against each video's
// "tags" passthrough field.
func (f *FakeOVA) search(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Query string   `json:"query"`
		Tags  []string `json:"tags"`
	}
	if err := f.readBody(r, &in); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Video{}
	for _, v := range f.Library {
		if in.Query != "" && strings.Contains(strings.ToLower(v.Title), strings.ToLower(in.Query)) {
			out = append(out, v)
			continue
		}
		if len(in.Tags) > 0 && hasAnyTag(v, in.Tags) {
			out = append(out, v)
		}
	}
	writeData(w, map[string]any{"results": out})
}

func hasAnyTag(v models.Video, tags []string) bool {
	var have []string
	if raw, ok := v.Extra["tags"]; ok {
		_ = json.Unmarshal(raw, &have)
	}
	for _, h := range have {
		for _, t := range tags {
			if strings.EqualFold(h, t) {
				return true
			}
		}
	}
	return false
}

// TaggedVideo returns a video whose passthrough "tags" field holds tags.
func TaggedVideo(id, title string, tags ...string) models.Video {
	raw, _ := json.Marshal(tags)
	return models.Video{VideoID: id, Title: title, Extra: map[string]json.RawMessage{"tags": raw}}
}

// NumberedVideos returns n videos with IDs v01.. and titles "Video 01"..,
// each one minute longer than the last, all 1080p.
func NumberedVideos(n int) []models.Video {
	out := make([]models.Video, n)
	for i := range out {
		num := fmt.Sprintf("%02d", i+1)
		out[i] = models.Video{
			VideoID:         "v" + num,
			Title:           "Video " + num,
			DurationSeconds: 60 * (i + 1),
			UploadedAt:      fmt.Sprintf("2024-01-%02dT10:00:00Z", i%28+1),
			Resolution:      models.Resolution{Width: 1920, Height: 1080},
		}
	}
	return out
}

// ListEnvelope is the decoded body of a list endpoint.
type ListEnvelope struct {
	Data struct {
		Items []struct {
			VideoID string `json:"videoId"`
			Title   string `json:"title"`
		} `json:"items"`
		TotalCount int             `json:"totalCount"`
		TotalPages int             `json:"totalPages"`
		Page       int             `json:"page"`
		Clamped    bool            `json:"clamped"`
		Query      string          `json:"query"`
		State      json.RawMessage `json:"state"`
	} `json:"data"`
	Notice string `json:"notice"`
}

// IDs returns the item IDs in order.
func (e ListEnvelope) IDs() []string {
	ids := make([]string, len(e.Data.Items))
	for i, it := range e.Data.Items {
		ids[i] = it.VideoID
	}
	return ids
}

// DecodeList decodes a list endpoint response, failing the test on error.
func DecodeList(t *testing.T, body []byte) ListEnvelope {
	t.Helper()
	var env ListEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode list response: %v\nbody: %s", err, body)
	}
	return env
}
