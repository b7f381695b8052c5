package holidays

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/calendar"
)

const (
	// DefaultURL is the community-maintained China holiday calendar.
	DefaultURL = "https://cdn.jsdelivr.net/gh/lanceliao/china-holiday-calender/holidayAPI.json"

	// DefaultTimeout bounds one fetch including the body download.
	DefaultTimeout = 15 * time.Second

	// maxBodySize guards against unexpectedly large responses.
	maxBodySize = 8 << 20
)

var (
	// ErrBadStatus is returned for non-2xx responses.
	ErrBadStatus = errors.New("unexpected http status")
	// errURLRequired is returned when the source has no URL.
	errURLRequired = errors.New("holiday feed URL must be provided")
)

// HTTPSource downloads the holiday feed from a fixed URL.
type HTTPSource struct {
	// client performs the requests; its Timeout is the fetch timeout.
	client *http.Client
	// url is the feed location.
	url string
}

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout sets the request timeout of the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(s *HTTPSource) {
		if timeout > 0 {
			s.client.Timeout = timeout
		}
	}
}

// NewHTTPSource creates a source for the given URL.
func NewHTTPSource(url string, opts ...Option) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}

	s := &HTTPSource{
		client: &http.Client{Timeout: DefaultTimeout},
		url:    url,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// URL returns the feed location.
func (s *HTTPSource) URL() string {
	return s.url
}

// Fetch performs a single GET and parses the response.
func (s *HTTPSource) Fetch(ctx context.Context) (*calendar.Snapshot, error) {
	if s.url == "" {
		return nil, errURLRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	response, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holiday feed: %w", err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, response.Status)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read holiday feed: %w", err)
	}

	snapshot, err := calendar.Parse(body)
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}
