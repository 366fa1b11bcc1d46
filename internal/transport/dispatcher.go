// Package transport issues HTTP calls against the wallet backend.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletctl/internal/domain"
)

// defaultTimeout bounds every single call; a timed-out call is never retried here.
const defaultTimeout = 30 * time.Second

// TokenSource supplies the current session credentials for outgoing requests.
type TokenSource interface {
	// SessionSnapshot returns the bearer token and the session generation it
	// belongs to. ok is false for anonymous sessions.
	SessionSnapshot() (token string, generation uint64, ok bool)
}

// UnauthorizedSink is notified when an authenticated call comes back 401.
// The dispatcher never mutates the session itself; ownership stays with the
// session manager.
type UnauthorizedSink interface {
	HandleUnauthorized(generation uint64)
}

// Request a single call to the backend.
type Request struct {
	Method string
	Path   string
	// Query optional URL parameters.
	Query url.Values
	// Body JSON-encoded when non-nil.
	Body any
	// Form form-encoded body; takes precedence over Body. Used by login.
	Form url.Values
	// RequiresAuth attach the bearer token. Auth endpoints (login, signup)
	// must pass false so a stale token never leaks into them.
	RequiresAuth bool
}

// Dispatcher sends requests, attaches bearer credentials, enforces the
// per-call timeout and classifies failures. It does not retry, cache, or
// mutate shared state.
type Dispatcher struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	tokens TokenSource
	sink   UnauthorizedSink
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		disp.timeout = d
	}
}

// WithHTTPClient overrides the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(disp *Dispatcher) {
		disp.client = c
	}
}

// New creates a dispatcher for the given API base URL.
func New(baseURL string, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  logger,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Bind wires the session manager in. Done after construction because the
// session manager itself dispatches through this component.
func (d *Dispatcher) Bind(tokens TokenSource, sink UnauthorizedSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens = tokens
	d.sink = sink
}

// Do executes the request and returns the raw JSON body on 2xx.
func (d *Dispatcher) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	httpReq, generation, err := d.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := d.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			d.logger.Warn("request timed out",
				zap.String("request_id", requestID),
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Duration("elapsed", time.Since(start)))
			return nil, domain.ErrTimeout
		}
		d.logger.Warn("request failed",
			zap.String("request_id", requestID),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err))
		return nil, errors.Wrap(domain.ErrNetwork, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			d.logger.Warn("request timed out reading response",
				zap.String("request_id", requestID),
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Duration("elapsed", time.Since(start)))
			return nil, domain.ErrTimeout
		}
		return nil, errors.Wrap(domain.ErrNetwork, err.Error())
	}

	d.logger.Debug("request completed",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		d.notifyUnauthorized(generation)
		return nil, domain.ErrUnauthorized
	default:
		return nil, &domain.ServerError{
			Status:  resp.StatusCode,
			Message: serverMessage(body, resp.StatusCode),
		}
	}
}

func (d *Dispatcher) buildRequest(ctx context.Context, req Request) (*http.Request, uint64, error) {
	endpoint := d.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var (
		reader      io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		reader = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, reader)
	if err != nil {
		return nil, 0, errors.Wrap(err, "build request")
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	var generation uint64
	if req.RequiresAuth {
		d.mu.RLock()
		tokens := d.tokens
		d.mu.RUnlock()
		if tokens != nil {
			if token, gen, ok := tokens.SessionSnapshot(); ok {
				httpReq.Header.Set("Authorization", "Bearer "+token)
				generation = gen
			}
		}
	}

	return httpReq, generation, nil
}

func (d *Dispatcher) notifyUnauthorized(generation uint64) {
	d.mu.RLock()
	sink := d.sink
	d.mu.RUnlock()
	if sink != nil {
		sink.HandleUnauthorized(generation)
	}
}

// serverMessage extracts a human-readable message from an error body,
// preferring the backend's detail/message fields over the status text.
func serverMessage(body []byte, status int) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		var detail string
		if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil && detail != "" {
			return detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return http.StatusText(status)
}
