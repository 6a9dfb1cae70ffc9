package errors

import "fmt"

// ErrNotFound indicates a requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrDuplicate indicates a uniqueness constraint was violated
type ErrDuplicate struct {
	Resource string
	Detail   string
}

func (e *ErrDuplicate) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s already exists: %s", e.Resource, e.Detail)
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// ErrInvalidStateTransition indicates a disallowed status change
type ErrInvalidStateTransition struct {
	From interface{}
	To   interface{}
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %v to %v", e.From, e.To)
}

// ErrUnauthorized indicates a failed authentication attempt
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrConfiguration indicates a missing or invalid configuration value.
// These fail fast: the caller supplied a valid request but the server
// is not set up to serve it.
type ErrConfiguration struct {
	Key string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Key)
}

// ErrUnknownProvider indicates an unrecognized payment provider name
type ErrUnknownProvider struct {
	Provider string
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("unknown payment provider: %s", e.Provider)
}

// ErrUnknownTemplate indicates an unregistered email template name
type ErrUnknownTemplate struct {
	Template string
}

func (e *ErrUnknownTemplate) Error() string {
	return fmt.Sprintf("unknown template: %s", e.Template)
}
