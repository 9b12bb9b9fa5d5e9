// Package client talks to the commerce backend over HTTP. It implements
// the payment, catalog, contact and company-info ports, wrapping every
// call with circuit breaking, bounded concurrency and tracing. Only
// idempotent reads are retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

// Backend is the HTTP client for the commerce backend API.
type Backend struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	logger     *zap.Logger
}

// NewBackend creates a commerce-backend client.
func NewBackend(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Backend {
	return &Backend{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		logger:     logger,
	}
}

// do executes one HTTP exchange and returns the status code and body.
func (b *Backend) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	if err := b.bulkhead.Acquire(ctx); err != nil {
		return 0, nil, err
	}
	defer b.bulkhead.Release()

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

// detailOf extracts the backend's "detail" message from an error body.
// Malformed bodies are tolerated on this best-effort secondary parse;
// the caller falls back to a generic message.
func detailOf(body []byte) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Detail
}

func externalErr(service string, body []byte, err error) error {
	return &domain.ErrExternalService{Service: service, Detail: detailOf(body), Err: err}
}
