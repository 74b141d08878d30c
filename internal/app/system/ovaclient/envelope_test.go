package ovaclient

import (
	"encoding/json"
	"testing"
)

func TestDecodeVideos_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		keys []string
		want int
	}{
		{"canonical", `{"data":{"videos":[{"videoId":"a"},{"videoId":"b"}]}}`, []string{"videos"}, 2},
		{"legacy array", `{"data":[{"videoId":"a"}]}`, []string{"videos"}, 1},
		{"search results", `{"data":{"results":[{"videoId":"a"}]}}`, []string{"results", "videos"}, 1},
		{"null data list", `{"data":{"videos":null}}`, []string{"videos"}, 0},
		{"bare array", `[{"videoId":"a"}]`, []string{"videos"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := unwrap([]byte(tt.body))
			if err != nil {
				t.Fatalf("unwrap: %v", err)
			}
			got, err := decodeVideos(payload, tt.keys...)
			if err != nil {
				t.Fatalf("decodeVideos: %v", err)
			}
			if got == nil || len(got) != tt.want {
				t.Errorf("got %d videos (nil=%v), want %d", len(got), got == nil, tt.want)
			}
		})
	}
}

func TestDecodeVideos_MissingKey(t *testing.T) {
	if _, err := decodeVideos(json.RawMessage(`{"other":[]}`), "videos"); err == nil {
		t.Error("expected error when list key is missing")
	}
}

func TestUnwrap_Empty(t *testing.T) {
	if _, err := unwrap([]byte("  ")); err == nil {
		t.Error("expected error for empty body")
	}
}

func TestDecodeLatest_MissingTotal(t *testing.T) {
	if _, _, err := decodeLatest([]byte(`{"data":{"videoIds":[]}}`)); err == nil {
		t.Error("expected error when totalVideos is absent")
	}
}
