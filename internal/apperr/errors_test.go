package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldError_IsValidation(t *testing.T) {
	err := fmt.Errorf("create booking: %w", Invalid("", "name", "email"))

	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "create booking: missing or invalid fields: name, email")

	var fe *FieldError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"name", "email"}, fe.Fields)
}

func TestFields_Err(t *testing.T) {
	var f Fields
	f.Add(false, "name")
	assert.NoError(t, f.Err())

	f.Add(true, "guests")
	assert.ErrorIs(t, f.Err(), ErrValidation)
	assert.Contains(t, f.Err().Error(), "guests")
}

func TestInvalid_Reason(t *testing.T) {
	assert.Nil(t, Invalid(""))
	assert.EqualError(t, Invalid("amount mismatch"), "amount mismatch")
	assert.False(t, errors.Is(Invalid("x"), ErrNotFound))
}
