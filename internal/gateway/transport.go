// Package gateway is the single path every call to the duty-attendance
// backend takes. Transport sends one HTTP exchange; Gateway adds the bearer
// token and the one-shot refresh-and-replay on 401; AuthAPI covers the two
// unauthenticated token endpoints.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/duty-attendance/internal/config"
	"github.com/spec-kit/duty-attendance/internal/observability"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// NetworkErrorMessage is shown when the backend could not be reached.
const NetworkErrorMessage = "Network error: Please check your connection"

// Request describes one backend call. Path is relative to the base URL,
// e.g. "teachers/". Body, when set, is sent as JSON and re-encoded for a replay.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Accept string
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeJSON unmarshals the body into out.
func (r *Response) DecodeJSON(out any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// Err returns nil for 2xx and otherwise a server error whose message is the
// backend's own detail when it sent one, fallback otherwise.
func (r *Response) Err(fallback string) error {
	if r.OK() {
		return nil
	}
	return apperrors.NewServerError(r.StatusCode, ErrorDetail(r.Body), fallback)
}

// Transport performs single HTTP exchanges against the backend base URL.
type Transport struct {
	httpClient *http.Client
	baseURL    *url.URL
	limiter    *rate.Limiter
	metrics    observability.Recorder
	logger     *zap.Logger
}

// NewTransport builds a transport from the API configuration.
func NewTransport(cfg config.APIConfig, httpClient *http.Client, metrics observability.Recorder, logger *zap.Logger) (*Transport, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host required", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	return &Transport{
		httpClient: httpClient,
		baseURL:    base,
		limiter:    limiter,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Send performs req once. token, when non-empty, is sent as a bearer
// credential. The returned error is always a *DomainError; non-2xx statuses
// are not errors here.
func (t *Transport) Send(ctx context.Context, req Request, token string) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, apperrors.NewNetworkError(NetworkErrorMessage, err)
		}
	}

	endpoint := t.resolve(req)

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("encode request body: %w", err))
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("build request: %w", err))
	}
	accept := req.Accept
	if accept == "" {
		accept = "application/json"
	}
	httpReq.Header.Set("Accept", accept)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		if t.metrics != nil {
			t.metrics.RecordTransportError(req.Method)
		}
		t.logger.Warn("api request failed",
			zap.String("request_id", requestID),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err))
		return nil, apperrors.NewNetworkError(NetworkErrorMessage, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if t.metrics != nil {
			t.metrics.RecordTransportError(req.Method)
		}
		return nil, apperrors.NewNetworkError(NetworkErrorMessage, fmt.Errorf("read response body: %w", err))
	}

	elapsed := time.Since(start)
	if t.metrics != nil {
		t.metrics.RecordRequest(req.Method, resp.StatusCode, elapsed)
	}
	t.logger.Debug("api request",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		RequestID:  requestID,
	}, nil
}

func (t *Transport) resolve(req Request) string {
	ref := &url.URL{Path: strings.TrimPrefix(req.Path, "/")}
	if len(req.Query) > 0 {
		ref.RawQuery = req.Query.Encode()
	}
	return t.baseURL.ResolveReference(ref).String()
}
