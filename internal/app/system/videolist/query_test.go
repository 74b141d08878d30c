package videolist

import (
	"net/url"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	states := []State{
		DefaultState(20),
		{SearchTerm: "cats & dogs", Sort: SortNewest, Page: 3, PageSize: 20},
		{Sort: SortDurationDesc, Resolution: Resolution4K, Duration: DurationVeryLong, Page: 1, PageSize: 20},
		{Sort: SortTitleAsc, UploadFrom: "2024-01-01", UploadTo: "2024-02-29", Page: 2, PageSize: 20},
		{SearchTerm: " spaced ", Sort: SortOldest, Resolution: Resolution720p, Duration: DurationShort,
			UploadFrom: "2023-05-05", Page: 9, PageSize: 20},
	}

	for _, codec := range []Codec{LibraryCodec, DiscoverCodec} {
		for _, st := range states {
			enc := codec.Encode(nil, st)
			got := codec.Decode(enc, 20)
			if got != st {
				t.Errorf("%s: round trip\n got %+v\nwant %+v\n via %s", codec.SearchKey, got, st, enc.Encode())
			}
			again := codec.Encode(nil, got)
			if again.Encode() != enc.Encode() {
				t.Errorf("%s: re-encode %q != %q", codec.SearchKey, again.Encode(), enc.Encode())
			}
		}
	}
}

func TestCodec_EncodeMergesUnrelated(t *testing.T) {
	existing := url.Values{
		"folder": {"movies/comedy"},
		"theme":  {"dark"},
		"page":   {"7"},
		"res":    {"720p"},
	}
	st := DefaultState(20)
	st.Page = 2
	st.SearchTerm = "cat"

	out := LibraryCodec.Encode(existing, st)

	if out.Get("folder") != "movies/comedy" || out.Get("theme") != "dark" {
		t.Errorf("unrelated params lost: %v", out)
	}
	if out.Get("page") != "2" || out.Get("search") != "cat" {
		t.Errorf("owned params not written: %v", out)
	}
	if out.Has("res") {
		t.Error("stale res should be removed when filter is cleared")
	}
	if existing.Get("page") != "7" {
		t.Error("Encode must not modify its input")
	}
}

func TestCodec_DefaultsOmitted(t *testing.T) {
	out := LibraryCodec.Encode(nil, DefaultState(20))
	if len(out) != 0 {
		t.Errorf("default state should encode to no params, got %v", out)
	}
}

func TestCodec_DecodeInvalid(t *testing.T) {
	v := url.Values{
		"page": {"-3"},
		"sort": {"random"},
		"res":  {"8k"},
		"dur":  {"forever"},
		"from": {"2024-13-01"},
		"to":   {"yesterday"},
	}
	got := LibraryCodec.Decode(v, 20)
	if got != DefaultState(20) {
		t.Errorf("invalid params should decode to defaults, got %+v", got)
	}
}

func TestCodec_DecodeCaseInsensitiveEnums(t *testing.T) {
	v := url.Values{"res": {"4k"}, "dur": {"VERYLONG"}}
	got := LibraryCodec.Decode(v, 20)
	if got.Resolution != Resolution4K || got.Duration != DurationVeryLong {
		t.Errorf("got %+v", got)
	}
}

func TestCodec_SearchKeys(t *testing.T) {
	st := DefaultState(20)
	st.SearchTerm = "hello"

	lib := LibraryCodec.Encode(nil, st)
	disc := DiscoverCodec.Encode(nil, st)
	if lib.Get("search") != "hello" || lib.Has("q") {
		t.Errorf("library params = %v", lib)
	}
	if disc.Get("q") != "hello" || disc.Has("search") {
		t.Errorf("discover params = %v", disc)
	}
}

func TestFlags(t *testing.T) {
	v := url.Values{}
	SetFlag(v, KeyTagsOnly, true)
	if !Flag(v, KeyTagsOnly) || v.Get(KeyTagsOnly) != "true" {
		t.Errorf("flag not set: %v", v)
	}
	SetFlag(v, KeyTagsOnly, false)
	if v.Has(KeyTagsOnly) {
		t.Error("false flag should be removed")
	}
	if !Flag(url.Values{"adv": {"1"}}, KeyAdvanced) {
		t.Error("\"1\" should read as true")
	}

	SetOptional(v, KeyFolder, "docs")
	if v.Get(KeyFolder) != "docs" {
		t.Error("SetOptional did not set")
	}
	SetOptional(v, KeyFolder, "")
	if v.Has(KeyFolder) {
		t.Error("empty value should remove key")
	}
}
