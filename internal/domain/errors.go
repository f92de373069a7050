package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidSession      = errors.New("invalid session")
	ErrMalformedCredential = fmt.Errorf("%w: malformed credential", ErrInvalidSession)
	ErrExpiredToken        = errors.New("expired token")
	ErrGameSessionNotFound = errors.New("game session not found")
	ErrStartGame           = errors.New("error start game")
	ErrEmptyResponse       = errors.New("empty response")
	ErrSnapshotNotFound    = errors.New("session snapshot not found")
)

// ProtocolError is a GraphQL-level failure reported inside a 2xx response.
type ProtocolError struct {
	Operation string
	Message   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: invalid protocol: %s", e.Operation, e.Message)
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: http status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: http status %d: %s", e.Operation, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// IsSessionFatal reports whether err must bypass request-level suppression
// and reach the session loop.
func IsSessionFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, ErrInvalidSession),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrGameSessionNotFound),
		errors.Is(err, ErrStartGame):
		return true
	default:
		return false
	}
}

// IsRecoverable reports whether the session loop should back off and
// re-authenticate instead of terminating.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrGameSessionNotFound) ||
		errors.Is(err, ErrStartGame)
}
