package domain

import "errors"

// ErrInvalidCredentials is returned when the backend rejects a login
// attempt. Session state is left untouched; the caller surfaces it.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSessionExpired is returned for any 401 on an authenticated call.
// By the time a caller sees it, the forced logout has already run.
var ErrSessionExpired = errors.New("session expired")

var ErrForbidden = errors.New("access forbidden")
var ErrNotFound = errors.New("not found")
var ErrConflict = errors.New("already exists")
var ErrBadRequest = errors.New("bad request")
