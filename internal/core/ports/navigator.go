package ports

import "github.com/LotusZhao0521/Library/internal/core/domain"

// Navigator performs the actual view transition once the guard has
// decided where to go. Implementations range from a CLI view switch to
// a test recorder.
type Navigator interface {
	NavigateTo(route domain.Route)
}
