package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/LotusZhao0521/Library/internal/core/domain"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestGateway(t *testing.T, handler http.HandlerFunc, token string) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	return NewGateway(srv.Client(), *base, staticToken(token), zerolog.Nop()), srv
}

func TestGateway_InjectsBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}, "abc123")

	var out map[string]string
	if err := gw.Get(context.Background(), "/users/me", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Fatalf("Authorization = %q, want Bearer abc123", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-ID not set")
	}
	if out["ok"] != "yes" {
		t.Fatalf("response not decoded: %v", out)
	}
}

func TestGateway_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	sawHeader := false
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, sawHeader = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}, "")

	if err := gw.Get(context.Background(), "/books/", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sawHeader || gotAuth != "" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
}

func TestGateway_UnauthorizedFiresHandlerBeforeReturning(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "could not validate credentials"})
	}, "stale")

	fired := false
	gw.OnSessionExpired(func(context.Context) { fired = true })

	err := gw.Get(context.Background(), "/users/me", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	// The handler must have run by the time the caller sees the error.
	if !fired {
		t.Fatalf("session-expired handler did not fire before return")
	}
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected api.Error with status 401, got %v", err)
	}
	if apiErr.Message != "could not validate credentials" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestGateway_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusConflict, domain.ErrConflict},
		{http.StatusBadRequest, domain.ErrBadRequest},
		{http.StatusUnprocessableEntity, domain.ErrBadRequest},
	}
	for _, tc := range cases {
		gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "nope"})
		}, "abc123")

		err := gw.Get(context.Background(), "/books/1", nil)
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		var apiErr *Error
		if !errors.As(err, &apiErr) || apiErr.Message != "nope" {
			t.Fatalf("status %d: message not carried: %v", tc.status, err)
		}
	}
}

func TestGateway_PostFormEncodesBody(t *testing.T) {
	var gotContentType, gotUser string
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		gotUser = r.PostFormValue("username")
		_ = json.NewEncoder(w).Encode(domain.Token{AccessToken: "tok", TokenType: "bearer"})
	}, "")

	form := url.Values{}
	form.Set("username", "bob")
	form.Set("password", "pw")

	var tok domain.Token
	if err := gw.PostForm(context.Background(), "/auth/login", form, &tok); err != nil {
		t.Fatalf("PostForm: %v", err)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if gotUser != "bob" {
		t.Fatalf("username not form-encoded, got %q", gotUser)
	}
	if tok.AccessToken != "tok" {
		t.Fatalf("token not decoded: %+v", tok)
	}
}

func TestGateway_NetworkErrorIsNotSessionExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base, _ := url.Parse(srv.URL)
	srv.Close() // connection refused from here on

	gw := NewGateway(nil, *base, staticToken("abc123"), zerolog.Nop())
	fired := false
	gw.OnSessionExpired(func(context.Context) { fired = true })

	err := gw.Get(context.Background(), "/books/", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if fired {
		t.Fatalf("network failure must not force a logout")
	}
	if errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("network failure must not map to ErrSessionExpired")
	}
}
