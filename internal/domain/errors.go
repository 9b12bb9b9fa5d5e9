package domain

import "fmt"

// Error types for consistent error handling across the BFF.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrConfig indicates a required configuration value is absent.
// Actions gated on it are blocked before any network call.
type ErrConfig struct {
	Setting string
	Action  string
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("configuração ausente: %s (necessária para %s)", e.Setting, e.Action)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Detail  string // backend-provided detail message, when present
	Err     error
}

func (e *ErrExternalService) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("external service error [%s]: %s", e.Service, e.Detail)
	}
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrSessionState indicates an operation not allowed in the session's
// current state (e.g. submitting while a submission is in flight).
type ErrSessionState struct {
	Current SessionState
}

func (e *ErrSessionState) Error() string {
	return fmt.Sprintf("operation not allowed in session state %q", e.Current)
}

// ErrSessionClosed indicates the checkout session was already closed.
type ErrSessionClosed struct {
	SessionID string
}

func (e *ErrSessionClosed) Error() string {
	return fmt.Sprintf("checkout session closed: %s", e.SessionID)
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
