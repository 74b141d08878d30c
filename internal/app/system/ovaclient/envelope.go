package ovaclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dalemusser/ovaview/internal/domain/models"
)

// The canonical response envelope is {"data": ...}. Older backend builds
// answer some video list endpoints with {"data": [...]} instead of
// {"data": {"videos": [...]}}; this file is the only place that knows.

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// unwrap returns the payload inside {"data": ...}. A body that is not an
// envelope is returned as is.
func unwrap(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	if trimmed[0] != '{' {
		return trimmed, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Data == nil {
		return trimmed, nil
	}
	return env.Data, nil
}

// decodeVideos accepts a bare array or an object carrying the array under
// one of keys.
func decodeVideos(payload json.RawMessage, keys ...string) ([]models.Video, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []models.Video{}, nil
	}

	if trimmed[0] == '[' {
		var videos []models.Video
		if err := json.Unmarshal(trimmed, &videos); err != nil {
			return nil, fmt.Errorf("decode video list: %w", err)
		}
		return nonNil(videos), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("decode video list object: %w", err)
	}
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		var videos []models.Video
		if err := json.Unmarshal(raw, &videos); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		return nonNil(videos), nil
	}
	return nil, fmt.Errorf("video list not found under %v", keys)
}

func nonNil(v []models.Video) []models.Video {
	if v == nil {
		return []models.Video{}
	}
	return v
}

// decodeFolders accepts ["a", "a/b"] with or without the envelope.
func decodeFolders(body []byte) ([]string, error) {
	payload, err := unwrap(body)
	if err != nil {
		return nil, err
	}
	var folders []string
	if err := json.Unmarshal(payload, &folders); err != nil {
		return nil, fmt.Errorf("decode folders: %w", err)
	}
	if folders == nil {
		folders = []string{}
	}
	return folders, nil
}

type latestPayload struct {
	VideoIDs    []string `json:"videoIds"`
	TotalVideos *int     `json:"totalVideos"`
}

// decodeLatest reads {"data": {"videoIds": [...], "totalVideos": n}}. A
// totalVideos next to data is also honored.
func decodeLatest(body []byte) ([]string, int, error) {
	payload, err := unwrap(body)
	if err != nil {
		return nil, 0, err
	}
	var inner latestPayload
	if err := json.Unmarshal(payload, &inner); err != nil {
		return nil, 0, fmt.Errorf("decode latest bucket: %w", err)
	}

	total := -1
	if inner.TotalVideos != nil {
		total = *inner.TotalVideos
	} else {
		var outer latestPayload
		if err := json.Unmarshal(body, &outer); err == nil && outer.TotalVideos != nil {
			total = *outer.TotalVideos
		}
	}
	if total < 0 {
		return nil, 0, fmt.Errorf("latest bucket missing totalVideos")
	}
	if inner.VideoIDs == nil {
		inner.VideoIDs = []string{}
	}
	return inner.VideoIDs, total, nil
}
