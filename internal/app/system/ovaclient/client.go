// Package ovaclient talks to the OVA backend REST API.
//
// All requests share one http.Client and one rate limiter. Any status of 400
// or above is returned as an *APIError. The client never retries.
package ovaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/ovaview/internal/app/system/videolist"
	"github.com/dalemusser/ovaview/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 512

// ErrNoBaseURL is returned by New when the backend URL is missing.
var ErrNoBaseURL = errors.New("ova backend base URL is not configured")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ova api %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Config configures a Client.
type Config struct {
	BaseURL    string        // e.g. http://ova.local:3000/api
	Token      string        // optional bearer token
	Timeout    time.Duration // per request; default 15s
	RatePerSec float64       // <= 0 disables limiting
	Burst      int           // default 5
	HTTPClient *http.Client  // optional; Timeout is ignored when set
}

// Client is an OVA backend API client. It is safe for concurrent use.
type Client struct {
	base       *url.URL
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New returns a client for cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNoBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ova base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("ova base url must be http or https, got %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		base:       base,
		token:      cfg.Token,
		httpClient: hc,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
	}, nil
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, in any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ova api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("ova api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode >= 400 {
		excerpt := string(data)
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: excerpt}
	}
	return data, nil
}

// ListFolders calls GET /folders.
func (c *Client) ListFolders(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, "/folders", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeFolders(body)
}

// VideosInFolder calls GET /videos?folder=.
func (c *Client) VideosInFolder(ctx context.Context, folder string) ([]models.Video, error) {
	body, err := c.do(ctx, http.MethodGet, "/videos", url.Values{"folder": {folder}}, nil)
	if err != nil {
		return nil, err
	}
	payload, err := unwrap(body)
	if err != nil {
		return nil, err
	}
	return decodeVideos(payload, "videos")
}

// VideosByIDs calls POST /videos/batch. Order of the result is the
// backend's; see videolist.OrderByIDs.
func (c *Client) VideosByIDs(ctx context.Context, ids []string) ([]models.Video, error) {
	if len(ids) == 0 {
		return []models.Video{}, nil
	}
	body, err := c.do(ctx, http.MethodPost, "/videos/batch", nil, map[string][]string{"ids": ids})
	if err != nil {
		return nil, err
	}
	payload, err := unwrap(body)
	if err != nil {
		return nil, err
	}
	return decodeVideos(payload, "videos")
}

// LatestBucket calls GET /videos/latest?start=&end=.
func (c *Client) LatestBucket(ctx context.Context, start, end int) (videolist.Bucket, error) {
	q := url.Values{
		"start": {strconv.Itoa(start)},
		"end":   {strconv.Itoa(end)},
	}
	body, err := c.do(ctx, http.MethodGet, "/videos/latest", q, nil)
	if err != nil {
		return videolist.Bucket{}, err
	}
	ids, total, err := decodeLatest(body)
	if err != nil {
		return videolist.Bucket{}, err
	}
	return videolist.Bucket{IDs: ids, Total: total}, nil
}

// SearchRequest is the body of POST /search. Set Query or Tags.
type SearchRequest struct {
	Query string   `json:"query,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Search calls POST /search.
func (c *Client) Search(ctx context.Context, in SearchRequest) ([]models.Video, error) {
	body, err := c.do(ctx, http.MethodPost, "/search", nil, in)
	if err != nil {
		return nil, err
	}
	payload, err := unwrap(body)
	if err != nil {
		return nil, err
	}
	return decodeVideos(payload, "results", "videos")
}
