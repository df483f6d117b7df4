package api

import (
	"fmt"
	"net/http"

	"github.com/LotusZhao0521/Library/internal/core/domain"
)

// Error is a non-2xx backend response surfaced to the caller. It keeps
// the raw status and the backend's message while unwrapping to the
// matching domain sentinel so call sites can branch with errors.Is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Unwrap maps the HTTP status to a deterministic domain error.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrSessionExpired
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrBadRequest
	}
	return nil
}

// errorBody covers the two envelope shapes the backend emits:
// {"detail": "..."} on auth/validation failures and {"error": "..."}
// elsewhere.
type errorBody struct {
	Detail string `json:"detail"`
	Err    string `json:"error"`
}

func (b errorBody) message() string {
	if b.Detail != "" {
		return b.Detail
	}
	return b.Err
}
