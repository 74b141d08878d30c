package videolist

import (
	"net/url"
	"strconv"
)

// Query parameter keys owned by list views.
const (
	KeyPage       = "page"
	KeySearch     = "search"
	KeyQuery      = "q"
	KeySort       = "sort"
	KeyResolution = "res"
	KeyDuration   = "dur"
	KeyFrom       = "from"
	KeyTo         = "to"
	KeyFolder     = "folder"
	KeyTagsOnly   = "tagsOnly"
	KeyAdvanced   = "adv"
)

// Codec maps State to and from URL query parameters. Views differ only in
// the key that carries the search term.
type Codec struct {
	SearchKey string
}

var (
	// LibraryCodec is used by the folder library and saved views.
	LibraryCodec = Codec{SearchKey: KeySearch}
	// DiscoverCodec is used by the search-driven discover view.
	DiscoverCodec = Codec{SearchKey: KeyQuery}
)

// Keys returns the parameter keys this codec owns.
func (c Codec) Keys() []string {
	return []string{KeyPage, c.searchKey(), KeySort, KeyResolution, KeyDuration, KeyFrom, KeyTo}
}

func (c Codec) searchKey() string {
	if c.SearchKey == "" {
		return KeySearch
	}
	return c.SearchKey
}

// Encode returns a copy of existing with st written into the owned keys.
// Keys holding default values are removed; unrelated keys are kept.
func (c Codec) Encode(existing url.Values, st State) url.Values {
	out := url.Values{}
	for k, vs := range existing {
		out[k] = append([]string(nil), vs...)
	}
	for _, k := range c.Keys() {
		out.Del(k)
	}

	if st.Page > 1 {
		out.Set(KeyPage, strconv.Itoa(st.Page))
	}
	if st.SearchTerm != "" {
		out.Set(c.searchKey(), st.SearchTerm)
	}
	if st.Sort != "" && st.Sort != DefaultSort {
		out.Set(KeySort, string(st.Sort))
	}
	if st.Resolution != ResolutionAny {
		out.Set(KeyResolution, string(st.Resolution))
	}
	if st.Duration != DurationAny {
		out.Set(KeyDuration, string(st.Duration))
	}
	if st.UploadFrom != "" {
		out.Set(KeyFrom, st.UploadFrom)
	}
	if st.UploadTo != "" {
		out.Set(KeyTo, st.UploadTo)
	}
	return out
}

// Decode reads the owned keys from v. Missing or invalid values take their
// defaults. pageSize is fixed per view and is not read from the URL.
func (c Codec) Decode(v url.Values, pageSize int) State {
	st := DefaultState(pageSize)

	if n, err := strconv.Atoi(v.Get(KeyPage)); err == nil && n > 0 {
		st.Page = n
	}
	st.SearchTerm = v.Get(c.searchKey())
	st.Sort = ParseSortOption(v.Get(KeySort))
	st.Resolution = ParseResolutionFilter(v.Get(KeyResolution))
	st.Duration = ParseDurationFilter(v.Get(KeyDuration))
	if d := v.Get(KeyFrom); ValidDate(d) {
		st.UploadFrom = d
	}
	if d := v.Get(KeyTo); ValidDate(d) {
		st.UploadTo = d
	}
	return st
}

// SetOptional sets key to value, or removes it when value is empty.
func SetOptional(v url.Values, key, value string) {
	if value == "" {
		v.Del(key)
		return
	}
	v.Set(key, value)
}

// SetFlag writes a boolean flag as "true", or removes it when false.
func SetFlag(v url.Values, key string, on bool) {
	if on {
		v.Set(key, "true")
		return
	}
	v.Del(key)
}

// Flag reads a boolean flag written by SetFlag or typed by hand.
func Flag(v url.Values, key string) bool {
	switch v.Get(key) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
