package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Iron-Ham/mosaic/internal/errors"
)

// maxBodyBytes bounds a single source response.
const maxBodyBytes = 1 << 20

// Transport fetches the raw body at url. Implementations must abort when
// ctx is cancelled.
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// HTTPTransport is a Transport over net/http.
type HTTPTransport struct {
	client *http.Client
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// NewHTTPTransport creates an HTTPTransport whose client records a client
// span per request. timeout bounds each request (0 = none).
func NewHTTPTransport(timeout time.Duration, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get implements Transport.
func (t *HTTPTransport) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewTransportError(url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.NewTransportError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, errors.NewStatusError(url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.NewTransportError(url, fmt.Errorf("read body: %w", err))
	}
	if len(body) > maxBodyBytes {
		return nil, errors.NewTransportError(url, fmt.Errorf("body exceeds %d bytes", maxBodyBytes))
	}
	return body, nil
}
