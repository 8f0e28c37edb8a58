package core

import "errors"

var (
	// ErrNotFound is returned when a view, user or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the session's role may not use a view or action.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated is returned for bad credentials or a missing session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidInput is returned for malformed requests.
	ErrInvalidInput = errors.New("invalid input")
)
