package discover

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/app/system/listview"
	"github.com/dalemusser/ovaview/internal/app/system/ovaclient"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"github.com/dalemusser/ovaview/internal/testutil"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*testutil.FakeOVA, http.Handler) {
	t.Helper()
	ova := testutil.NewFakeOVA(t)
	beach := testutil.TaggedVideo("b1", "Beach day", "summer")
	beach.Resolution = models.Resolution{Width: 1280, Height: 720}
	beach4k := testutil.TaggedVideo("b2", "Beach night", "summer", "night")
	beach4k.Resolution = models.Resolution{Width: 3840, Height: 2160}
	snow := testutil.TaggedVideo("s1", "Snow", "winter")
	ova.Library = []models.Video{beach, beach4k, snow}

	client, err := ovaclient.New(ovaclient.Config{BaseURL: ova.URL()}, zap.NewNop())
	if err != nil {
		t.Fatalf("ovaclient.New() error: %v", err)
	}
	return ova, Routes(NewHandler(client, collation.New("en"), 20, zap.NewNop()))
}

func get(t *testing.T, h http.Handler, target string) testutil.ListEnvelope {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	return testutil.DecodeList(t, rec.Body.Bytes())
}

func TestSplitTags(t *testing.T) {
	if got := SplitTags(" a, b  c,,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("SplitTags() = %v", got)
	}
	if got := SplitTags(" , "); got != nil {
		t.Errorf("SplitTags(blank) = %v, want nil", got)
	}
}

func TestSearch_FreeText(t *testing.T) {
	ova, h := setup(t)

	env := get(t, h, "/?q=beach&sort=titleDesc")
	if !reflect.DeepEqual(env.IDs(), []string{"b2", "b1"}) {
		t.Errorf("ids = %v", env.IDs())
	}
	if string(ova.LastBody("/search")) != `{"query":"beach"}` {
		t.Errorf("search body = %s", ova.LastBody("/search"))
	}
	if env.Data.Query != "q=beach&sort=titleDesc" {
		t.Errorf("query = %q", env.Data.Query)
	}

	var st listview.StateView
	if err := json.Unmarshal(env.Data.State, &st); err != nil {
		t.Fatalf("state: %v", err)
	}
	if st.Search != "beach" {
		t.Errorf("state.search = %q, want the submitted term", st.Search)
	}
}

func TestSearch_TagsOnly(t *testing.T) {
	ova, h := setup(t)

	env := get(t, h, "/?q=winter,%20night&tagsOnly=1")
	if !reflect.DeepEqual(env.IDs(), []string{"b2", "s1"}) {
		t.Errorf("ids = %v", env.IDs())
	}
	if string(ova.LastBody("/search")) != `{"tags":["winter","night"]}` {
		t.Errorf("search body = %s", ova.LastBody("/search"))
	}
	if env.Data.Query != "q=winter%2C+night&tagsOnly=true" {
		t.Errorf("query = %q", env.Data.Query)
	}
}

func TestSearch_AttributeFiltersNeedAdvanced(t *testing.T) {
	_, h := setup(t)

	env := get(t, h, "/?q=beach&res=4K")
	if len(env.IDs()) != 2 {
		t.Errorf("without adv filters must be ignored, ids = %v", env.IDs())
	}
	if env.Data.Query != "q=beach" {
		t.Errorf("query = %q, ignored filters should drop out", env.Data.Query)
	}

	env = get(t, h, "/?q=beach&res=4K&adv=true")
	if !reflect.DeepEqual(env.IDs(), []string{"b2"}) {
		t.Errorf("with adv ids = %v", env.IDs())
	}
	if env.Data.Query != "adv=true&q=beach&res=4K" {
		t.Errorf("query = %q", env.Data.Query)
	}
}

func TestSearch_EmptyTermSkipsBackend(t *testing.T) {
	ova, h := setup(t)

	env := get(t, h, "/?q=%20%20")
	if len(env.IDs()) != 0 || env.Notice != listview.NoticeSearchEmpty {
		t.Errorf("ids=%v notice=%q", env.IDs(), env.Notice)
	}
	if n := len(ova.Requests()); n != 0 {
		t.Errorf("backend called %d times", n)
	}
}

func TestSearch_TagsOnlyWithoutTagsSkipsBackend(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"comma", "/?q=,&tagsOnly=1"},
		{"commas and spaces", "/?q=%20,%20,%20&tagsOnly=true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ova, h := setup(t)
			env := get(t, h, tt.target)
			if len(env.IDs()) != 0 || env.Notice != listview.NoticeSearchEmpty {
				t.Errorf("ids=%v notice=%q", env.IDs(), env.Notice)
			}
			if n := len(ova.Requests()); n != 0 {
				t.Errorf("backend called %d times", n)
			}
		})
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	ova, h := setup(t)
	ova.Lock()
	ova.FailStatus = http.StatusInternalServerError
	ova.Unlock()

	env := get(t, h, "/?q=beach")
	if len(env.IDs()) != 0 || env.Notice != listview.NoticeUnavailable {
		t.Errorf("ids=%v notice=%q", env.IDs(), env.Notice)
	}
}
