package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-gymdesk/components/gym"
)

// DefaultTimeout applies when neither HTTPClient nor Timeout is configured.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// ErrUnauthorized is returned for any 401 response. By the time it is
// returned the session has been cleared and OnUnauthorized has run.
var ErrUnauthorized = errors.New("api: unauthorized")

// SessionProvider supplies the bearer token and is cleared on 401.
type SessionProvider interface {
	Token() string
	Clear(reason string)
}

// Error is a non-success backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: remote error %d", e.Status)
	}
	return fmt.Sprintf("api: remote error %d: %s", e.Status, e.Message)
}

// Config configures the REST client.
type Config struct {
	BaseURL    string
	Session    SessionProvider
	HTTPClient *http.Client
	Timeout    time.Duration
	// RateLimit caps requests per second; zero disables throttling.
	RateLimit float64
	Burst     int
	// OnUnauthorized runs after a 401 has cleared the session.
	OnUnauthorized func(ctx context.Context)
}

// Client talks to the gym backend's REST API. Every request carries the
// session's bearer token; a 401 anywhere signs the session out.
type Client struct {
	baseURL        string
	session        SessionProvider
	client         *http.Client
	limiter        *rate.Limiter
	onUnauthorized func(ctx context.Context)
	tracer         trace.Tracer
}

var _ gym.Backend = (*Client)(nil)
var _ gym.AuthRepository = (*Client)(nil)

// NewClient builds a client for the configured backend.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api: base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", cfg.BaseURL, err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &Client{
		baseURL:        base,
		session:        cfg.Session,
		client:         httpClient,
		limiter:        limiter,
		onUnauthorized: cfg.OnUnauthorized,
		tracer:         otel.Tracer("gymdesk/api"),
	}, nil
}

// envelope is the backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count,omitempty"`
	Total   *int            `json:"total,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, target any) (err error) {
	ctx, span := c.tracer.Start(ctx, "api "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("api: rate limit: %w", err)
		}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("api: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	span.SetAttributes(attribute.String("http.request_id", requestID))
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api: http request: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
		if env.Message != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
		}
		return ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		message := env.Message
		if decodeErr != nil || message == "" {
			message = strings.TrimSpace(string(raw))
		}
		return &Error{Status: resp.StatusCode, Message: message}
	}
	if decodeErr != nil {
		return fmt.Errorf("api: decode response: %w", decodeErr)
	}
	if !env.Success {
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}
	if target == nil || len(env.Data) == 0 {
		return nil
	}
	if raw, ok := target.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], env.Data...)
		return nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("api: decode %s %s data: %w", method, path, err)
	}
	return nil
}

func (c *Client) handleUnauthorized(ctx context.Context) {
	if c.session != nil {
		c.session.Clear(gym.LogoutRejected)
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}
