// Package api implements the outbound request pipeline to the library
// backend: credential injection on every request, centralized handling
// of authorization failures, and the typed endpoint clients built on
// top of it (see the client subpackage).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LotusZhao0521/Library/internal/api/metrics"
	"github.com/LotusZhao0521/Library/internal/core/ports"
)

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Gateway is the single dispatch point for backend calls. Every request
// passes through it: the bearer token is attached on the way out, and a
// 401 on the way back fires the session-expired subscriber before the
// error reaches the caller, so callers always observe the logged-out
// state.
type Gateway struct {
	client  httpClient
	baseURL url.URL
	tokens  ports.TokenSource
	log     zerolog.Logger

	mu      sync.RWMutex
	expired func(ctx context.Context)
}

// NewGateway builds a Gateway over the given HTTP client and base URL.
// When client is nil a default client with a sane timeout is used.
func NewGateway(client httpClient, baseURL url.URL, tokens ports.TokenSource, log zerolog.Logger) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Gateway{
		client:  client,
		baseURL: baseURL,
		tokens:  tokens,
		log:     log,
	}
}

// OnSessionExpired subscribes the handler invoked on every 401 response.
// The handler runs synchronously, before the originating call returns,
// and is expected to log the session out and redirect to the login view.
func (g *Gateway) OnSessionExpired(fn func(ctx context.Context)) {
	g.mu.Lock()
	g.expired = fn
	g.mu.Unlock()
}

// Get issues a GET and decodes the JSON response into out.
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	return g.do(ctx, http.MethodGet, path, "", nil, out)
}

// Post issues a POST with a JSON body (nil for empty) and decodes the
// response into out.
func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	rd, ct, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return g.do(ctx, http.MethodPost, path, ct, rd, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (g *Gateway) Put(ctx context.Context, path string, body, out any) error {
	rd, ct, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return g.do(ctx, http.MethodPut, path, ct, rd, out)
}

// Delete issues a DELETE and discards any response body.
func (g *Gateway) Delete(ctx context.Context, path string) error {
	return g.do(ctx, http.MethodDelete, path, "", nil, nil)
}

// PostForm issues a POST with a form-encoded body and decodes the
// response into out. Used by the login exchange.
func (g *Gateway) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	body := strings.NewReader(form.Encode())
	return g.do(ctx, http.MethodPost, path, "application/x-www-form-urlencoded", body, out)
}

func encodeJSON(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(buf), "application/json", nil
}

func (g *Gateway) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	target := g.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := g.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	metrics.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(method, "error").Inc()
		g.log.Warn().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.RequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	g.log.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend call")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var envelope errorBody
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Message = envelope.message()
		}
		if resp.StatusCode == http.StatusUnauthorized {
			metrics.AuthFailuresTotal.Inc()
			g.notifySessionExpired(ctx)
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// notifySessionExpired runs the subscribed handler, if any, before the
// 401 propagates. Ordering matters: callers checking IsLoggedIn right
// after an authorization failure must see the logged-out state.
func (g *Gateway) notifySessionExpired(ctx context.Context) {
	g.mu.RLock()
	fn := g.expired
	g.mu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
}
