package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// DefaultUpstreamTimeout bounds a single fetch of the product collection
const DefaultUpstreamTimeout = 30 * time.Second

var (
	ErrUpstreamNotConfigured = errors.New("products API URL is not configured")
	ErrUpstreamUnavailable   = errors.New("products API unavailable")
)

// UpstreamStatusError is returned when the products API answers with a
// non-success status code
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("failed to fetch products: status %d", e.StatusCode)
}

func (e *UpstreamStatusError) Unwrap() error {
	return ErrUpstreamUnavailable
}

// ProductSource defines access to the full product collection
type ProductSource interface {
	FetchAll(ctx context.Context) ([]domain.Product, error)
}

// productsEnvelope is the upstream response body. Pagination and filter
// fields sent by the upstream are ignored.
type productsEnvelope struct {
	Data []domain.Product `json:"data"`
}

type httpProductSource struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

// HTTPSourceOption customizes the upstream HTTP source
type HTTPSourceOption func(*httpProductSource)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) HTTPSourceOption {
	return func(s *httpProductSource) {
		s.client = client
	}
}

// WithTimeout overrides DefaultUpstreamTimeout
func WithTimeout(timeout time.Duration) HTTPSourceOption {
	return func(s *httpProductSource) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewHTTPProductSource creates a ProductSource that downloads the whole
// collection from url on every call
func NewHTTPProductSource(url string, opts ...HTTPSourceOption) ProductSource {
	s := &httpProductSource{
		url:     url,
		client:  http.DefaultClient,
		timeout: DefaultUpstreamTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAll retrieves every product in a single GET without query parameters
func (s *httpProductSource) FetchAll(ctx context.Context) ([]domain.Product, error) {
	if s.url == "" {
		return nil, ErrUpstreamNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build products request: %w", errors.Join(ErrUpstreamUnavailable, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.RequestIDHeader, requestID(ctx))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", errors.Join(ErrUpstreamUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode}
	}

	var envelope productsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode products response: %w", errors.Join(ErrUpstreamUnavailable, err))
	}

	if envelope.Data == nil {
		return []domain.Product{}, nil
	}

	return envelope.Data, nil
}

// requestID reuses the inbound request id so upstream logs can be correlated
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
