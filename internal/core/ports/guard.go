package ports

import (
	"context"

	"github.com/LotusZhao0521/Library/internal/core/domain"
)

// Decision is the outcome of evaluating a navigation attempt.
type Decision struct {
	// Allowed reports whether the original navigation may proceed.
	Allowed bool
	// RedirectTo is the replacement route when Allowed is false.
	RedirectTo domain.Route
}

// Guard evaluates whether the current session may enter a route, and
// where to send it instead when it may not.
type Guard interface {
	Evaluate(ctx context.Context, route domain.Route) Decision
}
