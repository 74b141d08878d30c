// Package listview shapes list pages for the JSON API. Every list endpoint
// answers with the same Response so shells can share one renderer.
package listview

import (
	"net/http"
	"net/url"

	"github.com/dalemusser/ovaview/internal/app/system/jsonutil"
	"github.com/dalemusser/ovaview/internal/app/system/videolist"
)

// Notices shown when the backend could not be reached.
const (
	NoticeUnavailable = "The video library is unavailable right now. Showing no results."
	NoticeSearchEmpty = "Enter a search term to discover videos."
)

// StateView is the applied list state, echoed so shells can render controls.
type StateView struct {
	Search     string `json:"search"`
	Sort       string `json:"sort"`
	Resolution string `json:"res"`
	Duration   string `json:"dur"`
	From       string `json:"from"`
	To         string `json:"to"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

// Response is the data payload of every list endpoint.
type Response struct {
	videolist.Page
	State StateView `json:"state"`
	// Query is the canonical query string for this page. Shells replace the
	// address bar with it so reloads and shared links land on the same page.
	Query string `json:"query"`
}

// NewStateView copies st for output.
func NewStateView(st videolist.State) StateView {
	return StateView{
		Search:     st.SearchTerm,
		Sort:       string(st.Sort),
		Resolution: string(st.Resolution),
		Duration:   string(st.Duration),
		From:       st.UploadFrom,
		To:         st.UploadTo,
		Page:       st.Page,
		PageSize:   st.PageSize,
	}
}

// New builds a Response. existing carries the request's query so parameters
// the codec does not own survive in Query.
func New(p videolist.Page, st videolist.State, codec videolist.Codec, existing url.Values) Response {
	return Response{
		Page:  p,
		State: NewStateView(st),
		Query: codec.Encode(existing, st).Encode(),
	}
}

// Empty is the page shown when nothing could be loaded.
func Empty(st videolist.State) (videolist.Page, videolist.State) {
	return videolist.Derive(nil, st, nil)
}

// Write sends resp, attaching notice when it is not empty.
func Write(w http.ResponseWriter, resp Response, notice string) {
	jsonutil.DataWithNotice(w, resp, notice)
}
