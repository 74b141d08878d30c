package ovaclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/dalemusser/ovaview/internal/app/system/ovaclient"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"github.com/dalemusser/ovaview/internal/testutil"
	"go.uber.org/zap"
)

func newClient(t *testing.T, baseURL string) *ovaclient.Client {
	t.Helper()
	c, err := ovaclient.New(ovaclient.Config{BaseURL: baseURL, Token: "secret"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func videoIDs(videos []models.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.VideoID
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	if _, err := ovaclient.New(ovaclient.Config{}, zap.NewNop()); !errors.Is(err, ovaclient.ErrNoBaseURL) {
		t.Errorf("empty base url: got %v", err)
	}
	if _, err := ovaclient.New(ovaclient.Config{BaseURL: "ftp://example.com"}, zap.NewNop()); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestClient_ListFolders(t *testing.T) {
	ova := testutil.NewFakeOVA(t)
	ova.Folders = []string{"movies/comedy", "docs"}

	got, err := newClient(t, ova.URL()).ListFolders(context.Background())
	if err != nil {
		t.Fatalf("ListFolders() error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"movies/comedy", "docs"}) {
		t.Errorf("folders = %v", got)
	}
}

func TestClient_VideosInFolder_BothEnvelopes(t *testing.T) {
	ova := testutil.NewFakeOVA(t)
	ova.ByFolder["movies"] = []models.Video{{VideoID: "a", Title: "A"}, {VideoID: "b", Title: "B"}}
	c := newClient(t, ova.URL())

	for _, legacy := range []bool{false, true} {
		ova.Lock()
		ova.LegacyEnvelope = legacy
		ova.Unlock()

		got, err := c.VideosInFolder(context.Background(), "movies")
		if err != nil {
			t.Fatalf("legacy=%v: VideosInFolder() error: %v", legacy, err)
		}
		if !reflect.DeepEqual(videoIDs(got), []string{"a", "b"}) {
			t.Errorf("legacy=%v: ids = %v", legacy, videoIDs(got))
		}
	}

	reqs := ova.Requests()
	if reqs[0] != "GET /videos?folder=movies" {
		t.Errorf("request = %q", reqs[0])
	}
}

func TestClient_VideosByIDs(t *testing.T) {
	ova := testutil.NewFakeOVA(t)
	ova.Library = []models.Video{{VideoID: "1"}, {VideoID: "2"}, {VideoID: "3"}}
	c := newClient(t, ova.URL())

	got, err := c.VideosByIDs(context.Background(), []string{"3", "1"})
	if err != nil {
		t.Fatalf("VideosByIDs() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d videos, want 2", len(got))
	}

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(ova.LastBody("/videos/batch"), &body); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if !reflect.DeepEqual(body.IDs, []string{"3", "1"}) {
		t.Errorf("sent ids = %v", body.IDs)
	}

	empty, err := c.VideosByIDs(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty ids: %v %v", empty, err)
	}
	if n := len(ova.Requests()); n != 1 {
		t.Errorf("empty id list should not hit the backend, requests = %d", n)
	}
}

func TestClient_LatestBucket(t *testing.T) {
	ova := testutil.NewFakeOVA(t)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		ova.Library = append(ova.Library, models.Video{VideoID: id})
	}

	b, err := newClient(t, ova.URL()).LatestBucket(context.Background(), 2, 4)
	if err != nil {
		t.Fatalf("LatestBucket() error: %v", err)
	}
	if !reflect.DeepEqual(b.IDs, []string{"c", "d"}) || b.Total != 5 {
		t.Errorf("bucket = %+v", b)
	}
}

func TestClient_LatestBucket_TopLevelTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"videoIds":["x"]},"totalVideos":41}`))
	}))
	defer srv.Close()

	b, err := newClient(t, srv.URL).LatestBucket(context.Background(), 0, 20)
	if err != nil {
		t.Fatalf("LatestBucket() error: %v", err)
	}
	if b.Total != 41 || len(b.IDs) != 1 {
		t.Errorf("bucket = %+v", b)
	}
}

func TestClient_Search(t *testing.T) {
	ova := testutil.NewFakeOVA(t)
	ova.Library = []models.Video{
		testutil.TaggedVideo("1", "Beach day", "summer"),
		testutil.TaggedVideo("2", "Snow", "winter"),
	}
	c := newClient(t, ova.URL())

	got, err := c.Search(context.Background(), ovaclient.SearchRequest{Query: "beach"})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if !reflect.DeepEqual(videoIDs(got), []string{"1"}) {
		t.Errorf("query results = %v", videoIDs(got))
	}

	got, err = c.Search(context.Background(), ovaclient.SearchRequest{Tags: []string{"winter"}})
	if err != nil {
		t.Fatalf("Search(tags) error: %v", err)
	}
	if !reflect.DeepEqual(videoIDs(got), []string{"2"}) {
		t.Errorf("tag results = %v", videoIDs(got))
	}
	if string(ova.LastBody("/search")) != `{"tags":["winter"]}` {
		t.Errorf("sent body = %s", ova.LastBody("/search"))
	}
}

func TestClient_PassthroughFieldsSurvive(t *testing.T) {
	ova := testutil.NewFakeOVA(t)
	ova.ByFolder[""] = []models.Video{testutil.TaggedVideo("1", "x", "a", "b")}

	got, err := newClient(t, ova.URL()).VideosInFolder(context.Background(), "")
	if err != nil {
		t.Fatalf("VideosInFolder() error: %v", err)
	}
	if string(got[0].Extra["tags"]) != `["a","b"]` {
		t.Errorf("tags = %s", got[0].Extra["tags"])
	}
}

func TestClient_APIError(t *testing.T) {
	ova := testutil.NewFakeOVA(t)
	ova.FailStatus = http.StatusBadGateway

	_, err := newClient(t, ova.URL()).ListFolders(context.Background())
	var apiErr *ovaclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Path != "/folders" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	if _, err := newClient(t, srv.URL).ListFolders(context.Background()); err != nil {
		t.Fatalf("ListFolders() error: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestClient_BasePathPreserved(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	if _, err := newClient(t, srv.URL+"/api/").ListFolders(context.Background()); err != nil {
		t.Fatalf("ListFolders() error: %v", err)
	}
	if path != "/api/folders" {
		t.Errorf("path = %q, want /api/folders", path)
	}
}
