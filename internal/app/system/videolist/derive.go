package videolist

import (
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/domain/models"
)

// Page is one derived page of a list view.
type Page struct {
	Items      []models.Video `json:"items"`
	TotalCount int            `json:"totalCount"`
	TotalPages int            `json:"totalPages"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Clamped    bool           `json:"clamped"` // requested page was out of range
	RangeStart int            `json:"rangeStart"`
	RangeEnd   int            `json:"rangeEnd"`
	HasPrev    bool           `json:"hasPrev"`
	HasNext    bool           `json:"hasNext"`
	PrevPage   int            `json:"prevPage"`
	NextPage   int            `json:"nextPage"`
}

// Derive runs the client-side pipeline: search, attribute filters, sort,
// count and clamp, slice. records is never modified. The returned state is st
// with Page clamped and PageSize defaulted.
func Derive(records []models.Video, st State, coll *collation.Collator) (Page, State) {
	if st.PageSize <= 0 {
		st.PageSize = DefaultPageSize
	}

	filtered := search(records, st.SearchTerm)
	filtered = filterAttributes(filtered, st)
	sortVideos(filtered, st.Sort, coll)

	page, clamped := clampPage(st.Page, len(filtered), st.PageSize)
	st.Page = page

	start := (page - 1) * st.PageSize
	end := start + st.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	if start > end {
		start = end
	}

	p := newPage(filtered[start:end], len(filtered), page, st.PageSize)
	p.Clamped = clamped
	return p, st
}

// TotalPages is ceil(count/pageSize), never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	n := (count + pageSize - 1) / pageSize
	if n < 1 {
		return 1
	}
	return n
}

// clampPage pulls page into [1, TotalPages] and reports whether it moved.
func clampPage(page, count, pageSize int) (int, bool) {
	total := TotalPages(count, pageSize)
	switch {
	case page < 1:
		return 1, true
	case page > total:
		return total, true
	default:
		return page, false
	}
}

func newPage(items []models.Video, count, page, pageSize int) Page {
	if items == nil {
		items = []models.Video{}
	}
	total := TotalPages(count, pageSize)
	p := Page{
		Items:      items,
		TotalCount: count,
		TotalPages: total,
		Page:       page,
		PageSize:   pageSize,
		HasPrev:    page > 1,
		HasNext:    page < total,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
	if p.PrevPage < 1 {
		p.PrevPage = 1
	}
	if p.NextPage > total {
		p.NextPage = total
	}
	if len(items) > 0 {
		p.RangeStart = (page-1)*pageSize + 1
		p.RangeEnd = p.RangeStart + len(items) - 1
	}
	return p
}

// search keeps records whose title contains term, case-insensitively.
// The result is always a fresh slice.
func search(records []models.Video, term string) []models.Video {
	out := make([]models.Video, 0, len(records))
	if term == "" {
		return append(out, records...)
	}
	needle := strings.ToLower(term)
	for _, v := range records {
		if strings.Contains(strings.ToLower(v.Title), needle) {
			out = append(out, v)
		}
	}
	return out
}

func filterAttributes(records []models.Video, st State) []models.Video {
	if !st.HasAttributeFilters() {
		return records
	}
	rng := st.uploadRange()
	out := records[:0]
	for _, v := range records {
		if !st.Resolution.Matches(v.Resolution.Height) {
			continue
		}
		if !st.Duration.Matches(v.DurationSeconds) {
			continue
		}
		if !rng.matches(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func sortVideos(records []models.Video, opt SortOption, coll *collation.Collator) {
	var less func(a, b models.Video) bool

	switch opt {
	case SortTitleDesc:
		less = func(a, b models.Video) bool { return coll.Compare(b.Title, a.Title) < 0 }
	case SortDurationAsc:
		less = func(a, b models.Video) bool { return a.DurationSeconds < b.DurationSeconds }
	case SortDurationDesc:
		less = func(a, b models.Video) bool { return a.DurationSeconds > b.DurationSeconds }
	case SortNewest:
		less = func(a, b models.Video) bool { return uploadTime(a).After(uploadTime(b)) }
	case SortOldest:
		less = func(a, b models.Video) bool { return uploadTime(a).Before(uploadTime(b)) }
	default:
		less = func(a, b models.Video) bool { return coll.Compare(a.Title, b.Title) < 0 }
	}

	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

// uploadTime returns the zero time for unparseable timestamps, so they sort
// as the oldest records.
func uploadTime(v models.Video) time.Time {
	t, _ := v.UploadTime()
	return t
}
