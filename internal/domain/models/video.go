package models

import (
	"encoding/json"
	"time"
)

// Resolution is the pixel size reported by the backend for a video.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Video is a single library record as returned by the OVA backend.
//
// Only the fields read by the list view-model are typed. Everything else the
// backend sends (thumbnails, tags, codec info, ...) is kept in Extra and
// written back out unchanged.
type Video struct {
	VideoID         string     `json:"videoId"`
	Title           string     `json:"title"`
	DurationSeconds int        `json:"durationSeconds"`
	UploadedAt      string     `json:"uploadedAt"` // ISO-8601
	Resolution      Resolution `json:"resolution"`

	Extra map[string]json.RawMessage `json:"-"`
}

var videoKnownKeys = []string{"videoId", "title", "durationSeconds", "uploadedAt", "resolution"}

// videoFields mirrors Video without its methods, so the custom codecs can
// delegate to encoding/json without recursing.
type videoFields struct {
	VideoID         string     `json:"videoId"`
	Title           string     `json:"title"`
	DurationSeconds int        `json:"durationSeconds"`
	UploadedAt      string     `json:"uploadedAt"`
	Resolution      Resolution `json:"resolution"`
}

// UnmarshalJSON decodes the typed fields and stashes the rest in Extra.
func (v *Video) UnmarshalJSON(data []byte) error {
	var f videoFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range videoKnownKeys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		raw = nil
	}

	*v = Video{
		VideoID:         f.VideoID,
		Title:           f.Title,
		DurationSeconds: f.DurationSeconds,
		UploadedAt:      f.UploadedAt,
		Resolution:      f.Resolution,
		Extra:           raw,
	}
	return nil
}

// MarshalJSON writes the typed fields plus every passthrough field.
func (v Video) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(videoFields{
		VideoID:         v.VideoID,
		Title:           v.Title,
		DurationSeconds: v.DurationSeconds,
		UploadedAt:      v.UploadedAt,
		Resolution:      v.Resolution,
	})
	if err != nil {
		return nil, err
	}
	if len(v.Extra) == 0 {
		return known, nil
	}

	out := make(map[string]json.RawMessage, len(v.Extra)+len(videoKnownKeys))
	for k, raw := range v.Extra {
		out[k] = raw
	}
	var typed map[string]json.RawMessage
	if err := json.Unmarshal(known, &typed); err != nil {
		return nil, err
	}
	for k, raw := range typed {
		out[k] = raw
	}
	return json.Marshal(out)
}

// UploadTime parses UploadedAt. ok is false when the value is missing or not
// a recognizable ISO-8601 timestamp.
func (v Video) UploadTime() (t time.Time, ok bool) {
	return ParseUploadTime(v.UploadedAt)
}

var uploadLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseUploadTime parses the timestamp formats the backend has been seen to
// emit. Times without a zone are taken as UTC.
func ParseUploadTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range uploadLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
