package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a classified domain failure.
type Error struct {
	Kind    Kind
	Field   string // offending field for conflicts
	Message string
	Details map[string]string // per-field validation messages
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports input that failed structural or semantic checks.
func Validation(message string, details map[string]string) *Error {
	if message == "" {
		message = "invalid payload"
	}
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Conflict reports a write rejected because field is already claimed by another user.
func Conflict(field string, err error) *Error {
	return &Error{
		Kind:    KindConflict,
		Field:   field,
		Message: fmt.Sprintf("%s already in use", field),
		Err:     err,
	}
}

// NotFound reports a missing resource.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
