package foldertree

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"go.uber.org/zap"
)

func names(nodes []*models.FolderNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuild_Basic(t *testing.T) {
	root := Build([]string{"movies/comedy", "movies/drama", "docs"}, collation.New("en"))

	if root.Name != models.RootFolderName || root.Path != "" {
		t.Fatalf("root = %q/%q, want Root/\"\"", root.Name, root.Path)
	}
	if got := names(root.Children); !equal(got, []string{"docs", "movies"}) {
		t.Fatalf("root children = %v", got)
	}
	movies := root.Children[1]
	if movies.Path != "movies" {
		t.Errorf("movies path = %q", movies.Path)
	}
	if got := names(movies.Children); !equal(got, []string{"comedy", "drama"}) {
		t.Errorf("movies children = %v", got)
	}
	if movies.Children[0].Path != "movies/comedy" {
		t.Errorf("comedy path = %q", movies.Children[0].Path)
	}
}

func TestBuild_DuplicatesAndOverlaps(t *testing.T) {
	root := Build([]string{"a/b", "a/b", "a", "/a//b/", "a/b/c", ""}, collation.New("en"))

	if root.Count() != 3 {
		t.Fatalf("Count() = %d, want 3 (a, a/b, a/b/c)", root.Count())
	}
	seen := map[string]bool{}
	root.Walk(func(n *models.FolderNode, _ int) bool {
		if seen[n.Path] {
			t.Errorf("duplicate path %q", n.Path)
		}
		seen[n.Path] = true
		return true
	})
	for _, p := range []string{"", "a", "a/b", "a/b/c"} {
		if !seen[p] {
			t.Errorf("missing node %q", p)
		}
	}
}

func TestBuild_PathInvariant(t *testing.T) {
	root := Build([]string{"x/y/z", "x/w", "v"}, collation.New("en"))
	var check func(parent *models.FolderNode)
	check = func(parent *models.FolderNode) {
		for _, c := range parent.Children {
			want := c.Name
			if parent.Path != "" {
				want = parent.Path + "/" + c.Name
			}
			if c.Path != want {
				t.Errorf("node %q path = %q, want %q", c.Name, c.Path, want)
			}
			check(c)
		}
	}
	check(root)
}

func TestBuild_OrderIndependent(t *testing.T) {
	coll := collation.New("en")
	a := Build([]string{"b/2", "a", "b/1", "c"}, coll)
	b := Build([]string{"c", "b/1", "a", "b/2", "b"}, coll)

	fa, fb := Flatten(a, ""), Flatten(b, "")
	if len(fa) != len(fb) {
		t.Fatalf("rows differ: %d vs %d", len(fa), len(fb))
	}
	for i := range fa {
		if fa[i] != fb[i] {
			t.Errorf("row %d: %+v vs %+v", i, fa[i], fb[i])
		}
	}
}

func TestBuild_LocaleAwareSort(t *testing.T) {
	root := Build([]string{"zebra", "Apple", "éclair", "banana"}, collation.New("en"))
	want := []string{"Apple", "banana", "éclair", "zebra"}
	if got := names(root.Children); !equal(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
}

func TestBuild_Empty(t *testing.T) {
	root := Build(nil, collation.New("en"))
	if len(root.Children) != 0 {
		t.Errorf("expected no children, got %d", len(root.Children))
	}
}

func TestIsActive(t *testing.T) {
	tests := []struct {
		path, current string
		want          bool
	}{
		{"movies", "movies", true},
		{"movies", "movies/comedy", false},
		{"movies/comedy", "movies", false},
		{"", "", true},
		{"Movies", "movies", false},
	}
	for _, tt := range tests {
		if got := IsActive(tt.path, tt.current); got != tt.want {
			t.Errorf("IsActive(%q, %q) = %v, want %v", tt.path, tt.current, got, tt.want)
		}
	}
}

func TestAnnotate(t *testing.T) {
	root := Build([]string{"movies/comedy", "docs"}, collation.New("en"))
	v := Annotate(root, "movies/comedy")

	var active []string
	var walk func(n *NodeView)
	walk = func(n *NodeView) {
		if n.Active {
			active = append(active, n.Path)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(v)
	if !equal(active, []string{"movies/comedy"}) {
		t.Errorf("active nodes = %v", active)
	}
}

func TestFlatten(t *testing.T) {
	root := Build([]string{"movies/comedy", "docs"}, collation.New("en"))
	rows := Flatten(root, "docs")

	wantPaths := []string{"", "docs", "movies", "movies/comedy"}
	wantDepth := []int{0, 1, 1, 2}
	if len(rows) != len(wantPaths) {
		t.Fatalf("rows = %d, want %d", len(rows), len(wantPaths))
	}
	for i, r := range rows {
		if r.Path != wantPaths[i] || r.Depth != wantDepth[i] {
			t.Errorf("row %d = %+v", i, r)
		}
	}
	if !rows[1].Active || rows[2].Active {
		t.Error("only docs should be active")
	}
}

func TestContains(t *testing.T) {
	root := Build([]string{"movies/comedy"}, collation.New("en"))
	if !Contains(root, "movies/comedy") || !Contains(root, "") {
		t.Error("expected known paths to be found")
	}
	if Contains(root, "comedy") {
		t.Error("partial path should not match")
	}
}

func TestStatic_SetPaths(t *testing.T) {
	s := NewStatic(collation.New("en"))
	if !s.SetPaths([]string{"a", "b"}) {
		t.Error("first SetPaths should rebuild")
	}
	first := s.Tree()
	if s.SetPaths([]string{"a", "b"}) {
		t.Error("identical input should not rebuild")
	}
	if s.Tree() != first {
		t.Error("tree should be unchanged")
	}
	if !s.SetPaths([]string{"a"}) {
		t.Error("changed input should rebuild")
	}
	if s.Tree().Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Tree().Count())
	}
}

type fakeLister struct {
	mu      sync.Mutex
	paths   []string
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeLister) ListFolders(ctx context.Context) ([]string, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paths, f.err
}

func TestFetching_Refresh(t *testing.T) {
	lister := &fakeLister{paths: []string{"movies/comedy", "docs"}}
	f := NewFetching(lister, collation.New("en"), zap.NewNop())

	if f.Tree().Count() != 0 {
		t.Error("tree should start empty")
	}
	if err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if f.Tree().Count() != 3 {
		t.Errorf("Count() = %d, want 3", f.Tree().Count())
	}
	if f.Loading() {
		t.Error("loading should be cleared")
	}
	if f.RefreshedAt().IsZero() {
		t.Error("RefreshedAt should be set")
	}
}

func TestFetching_RefreshErrorResetsTree(t *testing.T) {
	lister := &fakeLister{paths: []string{"a"}}
	f := NewFetching(lister, collation.New("en"), zap.NewNop())
	_ = f.Refresh(context.Background())

	lister.mu.Lock()
	lister.err = errors.New("backend down")
	lister.mu.Unlock()

	if err := f.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if f.Tree().Count() != 0 {
		t.Error("tree should be empty after failed refresh")
	}
	if f.Loading() {
		t.Error("loading should be cleared after failure")
	}
	if f.LastError() == nil {
		t.Error("LastError should be set")
	}
}

func TestFetching_LoadingWhileInFlight(t *testing.T) {
	lister := &fakeLister{
		paths:   []string{"a"},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	f := NewFetching(lister, collation.New("en"), zap.NewNop())

	done := make(chan error)
	go func() { done <- f.Refresh(context.Background()) }()

	<-lister.started
	if !f.Loading() {
		t.Error("Loading() should be true while the fetch is in flight")
	}
	close(lister.block)
	if err := <-done; err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if f.Loading() {
		t.Error("Loading() should be false after the fetch")
	}
}
