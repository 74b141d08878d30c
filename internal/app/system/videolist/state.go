// Package videolist derives the visible page of a video list from the raw
// record set and the list's query state.
//
// The client-side variant (Derive) searches, filters, sorts, and slices an
// in-memory record set. The server-side variant (BucketPager) asks the backend
// for one bucket of IDs and resolves them; it never searches, filters, or
// sorts. Both report the same Page shape.
package videolist

import (
	"strings"
	"time"

	"github.com/dalemusser/ovaview/internal/domain/models"
)

// DefaultPageSize is the page size used when a view does not set one.
const DefaultPageSize = 20

// DateLayout is the calendar date format used by the upload range bounds.
const DateLayout = "2006-01-02"

// SortOption selects the comparator applied in the sort step.
type SortOption string

const (
	SortTitleAsc     SortOption = "titleAsc"
	SortTitleDesc    SortOption = "titleDesc"
	SortDurationAsc  SortOption = "durationAsc"
	SortDurationDesc SortOption = "durationDesc"
	SortNewest       SortOption = "newest"
	SortOldest       SortOption = "oldest"

	DefaultSort = SortTitleAsc
)

// SortOptions lists every sort option in display order.
var SortOptions = []SortOption{
	SortTitleAsc, SortTitleDesc, SortDurationAsc, SortDurationDesc, SortNewest, SortOldest,
}

// ParseSortOption returns the option named s, or DefaultSort.
func ParseSortOption(s string) SortOption {
	for _, o := range SortOptions {
		if string(o) == s {
			return o
		}
	}
	return DefaultSort
}

// ResolutionFilter is a resolution tier. The zero value matches everything.
type ResolutionFilter string

const (
	ResolutionAny   ResolutionFilter = ""
	Resolution720p  ResolutionFilter = "720p"
	Resolution1080p ResolutionFilter = "1080p"
	Resolution4K    ResolutionFilter = "4K"
)

// ResolutionFilters lists the tiers, ResolutionAny first.
var ResolutionFilters = []ResolutionFilter{ResolutionAny, Resolution720p, Resolution1080p, Resolution4K}

// ParseResolutionFilter is case-insensitive; unknown values yield ResolutionAny.
func ParseResolutionFilter(s string) ResolutionFilter {
	for _, r := range ResolutionFilters {
		if strings.EqualFold(string(r), s) {
			return r
		}
	}
	return ResolutionAny
}

// Matches reports whether a video of the given height belongs to the tier.
// 720p and 1080p are exact heights; 4K is any height of 2160 or more.
func (r ResolutionFilter) Matches(height int) bool {
	switch r {
	case Resolution720p:
		return height == 720
	case Resolution1080p:
		return height == 1080
	case Resolution4K:
		return height >= 2160
	default:
		return true
	}
}

// DurationFilter is a duration bucket. The zero value matches everything.
type DurationFilter string

const (
	DurationAny       DurationFilter = ""
	DurationShort     DurationFilter = "short"     // <= 5 min
	DurationMedium    DurationFilter = "medium"    // (5, 15] min
	DurationLong      DurationFilter = "long"      // (15, 30] min
	DurationVeryLong  DurationFilter = "veryLong"  // (30, 60] min
	DurationExtraLong DurationFilter = "extraLong" // > 60 min
)

// DurationFilters lists the buckets, DurationAny first.
var DurationFilters = []DurationFilter{
	DurationAny, DurationShort, DurationMedium, DurationLong, DurationVeryLong, DurationExtraLong,
}

// ParseDurationFilter is case-insensitive; unknown values yield DurationAny.
func ParseDurationFilter(s string) DurationFilter {
	for _, d := range DurationFilters {
		if strings.EqualFold(string(d), s) {
			return d
		}
	}
	return DurationAny
}

// Matches reports whether a video of the given length falls in the bucket.
func (d DurationFilter) Matches(seconds int) bool {
	switch d {
	case DurationShort:
		return seconds <= 300
	case DurationMedium:
		return seconds > 300 && seconds <= 900
	case DurationLong:
		return seconds > 900 && seconds <= 1800
	case DurationVeryLong:
		return seconds > 1800 && seconds <= 3600
	case DurationExtraLong:
		return seconds > 3600
	default:
		return true
	}
}

// State is everything a list view needs to pick its page.
type State struct {
	SearchTerm string
	Sort       SortOption
	Resolution ResolutionFilter
	Duration   DurationFilter
	UploadFrom string // YYYY-MM-DD, "" when unset
	UploadTo   string // YYYY-MM-DD, "" when unset
	Page       int
	PageSize   int
}

// DefaultState returns the initial state for a view with the given page size.
func DefaultState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{Sort: DefaultSort, Page: 1, PageSize: pageSize}
}

// HasAttributeFilters reports whether any resolution, duration, or date
// filter is set.
func (s State) HasAttributeFilters() bool {
	return s.Resolution != ResolutionAny || s.Duration != DurationAny || s.UploadFrom != "" || s.UploadTo != ""
}

// WithoutAttributeFilters returns s with every attribute filter cleared.
func (s State) WithoutAttributeFilters() State {
	s.Resolution = ResolutionAny
	s.Duration = DurationAny
	s.UploadFrom = ""
	s.UploadTo = ""
	return s
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// uploadRange holds the parsed date bounds. to is exclusive: midnight after
// the last included day.
type uploadRange struct {
	from, to       time.Time
	hasFrom, hasTo bool
}

func (s State) uploadRange() uploadRange {
	var r uploadRange
	if t, err := time.Parse(DateLayout, s.UploadFrom); err == nil {
		r.from, r.hasFrom = t, true
	}
	if t, err := time.Parse(DateLayout, s.UploadTo); err == nil {
		r.to, r.hasTo = t.AddDate(0, 0, 1), true
	}
	return r
}

func (r uploadRange) active() bool {
	return r.hasFrom || r.hasTo
}

func (r uploadRange) matches(v models.Video) bool {
	if !r.active() {
		return true
	}
	t, ok := v.UploadTime()
	if !ok {
		return false
	}
	if r.hasFrom && t.Before(r.from) {
		return false
	}
	if r.hasTo && !t.Before(r.to) {
		return false
	}
	return true
}
