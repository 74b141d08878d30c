package folders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/app/system/foldertree"
	"github.com/dalemusser/ovaview/internal/app/system/listview"
	"github.com/dalemusser/ovaview/internal/app/system/ovaclient"
	"github.com/dalemusser/ovaview/internal/testutil"
	"go.uber.org/zap"
)

const testKey = "operator-key-0123456789abcdef0123"

type treeEnvelope struct {
	Data   TreeResponse `json:"data"`
	Notice string       `json:"notice"`
}

func setup(t *testing.T) (*testutil.FakeOVA, *Handler) {
	t.Helper()
	ova := testutil.NewFakeOVA(t)
	ova.Folders = []string{"movies/comedy", "/movies/drama/", "docs", "movies"}
	client, err := ovaclient.New(ovaclient.Config{BaseURL: ova.URL()}, zap.NewNop())
	if err != nil {
		t.Fatalf("ovaclient.New() error: %v", err)
	}
	src := foldertree.NewFetching(client, collation.New("en"), zap.NewNop())
	return ova, NewHandler(src, zap.NewNop())
}

func getTree(t *testing.T, h *Handler, target string) treeEnvelope {
	t.Helper()
	rec := httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var env treeEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func refresh(h *Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	OperatorRoutes(h, testKey, zap.NewNop()).ServeHTTP(rec, req)
	return rec
}

func TestTree_BeforeRefresh(t *testing.T) {
	_, h := setup(t)

	env := getTree(t, h, "/tree")
	if env.Data.Tree == nil || env.Data.Tree.Name != "Root" || len(env.Data.Tree.Children) != 0 {
		t.Errorf("tree = %+v, want empty root", env.Data.Tree)
	}
	if !env.Data.Tree.Active || !env.Data.Known {
		t.Error("root should be active and known when no folder is selected")
	}
}

func TestTree_AfterRefresh(t *testing.T) {
	_, h := setup(t)

	rec := refresh(h, testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", rec.Code)
	}
	var out struct {
		Data RefreshResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Data.Count != 4 || out.Data.RefreshedAt.IsZero() {
		t.Errorf("refresh = %+v", out.Data)
	}

	env := getTree(t, h, "/tree?folder=/movies//drama")
	if env.Data.Current != "movies/drama" || !env.Data.Known || env.Data.Count != 4 {
		t.Errorf("current=%q known=%v count=%d", env.Data.Current, env.Data.Known, env.Data.Count)
	}
	if len(env.Data.Breadcrumbs) != 2 || env.Data.Breadcrumbs[1].Path != "movies/drama" {
		t.Errorf("breadcrumbs = %+v", env.Data.Breadcrumbs)
	}

	root := env.Data.Tree
	if len(root.Children) != 2 || root.Children[0].Name != "docs" || root.Children[1].Name != "movies" {
		t.Fatalf("root children = %+v", root.Children)
	}
	movies := root.Children[1]
	if movies.Active || len(movies.Children) != 2 {
		t.Fatalf("movies = %+v", movies)
	}
	if movies.Children[0].Name != "comedy" || movies.Children[0].Active {
		t.Errorf("comedy = %+v", movies.Children[0])
	}
	if movies.Children[1].Name != "drama" || !movies.Children[1].Active {
		t.Errorf("drama = %+v", movies.Children[1])
	}

	if env := getTree(t, h, "/tree?folder=nope"); env.Data.Known {
		t.Error("unknown folder reported as known")
	}
}

func TestRefresh_FailureShowsNotice(t *testing.T) {
	ova, h := setup(t)
	ova.Lock()
	ova.FailStatus = http.StatusInternalServerError
	ova.Unlock()

	rec := refresh(h, testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := getTree(t, h, "/tree")
	if env.Notice != listview.NoticeUnavailable || env.Data.Count != 0 {
		t.Errorf("notice=%q count=%d", env.Notice, env.Data.Count)
	}
}

func TestRefresh_RequiresKey(t *testing.T) {
	ova, h := setup(t)

	for _, key := range []string{"", "wrong"} {
		if rec := refresh(h, key); rec.Code != http.StatusUnauthorized {
			t.Errorf("key %q: status = %d, want 401", key, rec.Code)
		}
	}
	if n := len(ova.Requests()); n != 0 {
		t.Errorf("backend called %d times", n)
	}
}
