package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflictMessageNamesField(t *testing.T) {
	err := Conflict("email", errors.New("duplicate key"))
	assert.Contains(t, err.Error(), "email")
	assert.Equal(t, "email", err.Field)
	assert.Equal(t, KindConflict, err.Kind)
}

func TestKindOf_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("create user: %w", Conflict("username", nil))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
	assert.False(t, Is(wrapped, KindNotFound))
}

func TestKindOf_Plain(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestValidationDefaultMessage(t *testing.T) {
	err := Validation("", map[string]string{"email": "must be a valid email"})
	assert.Equal(t, "invalid payload", err.Message)
	assert.Equal(t, "validation", err.Kind.String())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Conflict("email", cause)
	assert.ErrorIs(t, err, cause)
}
