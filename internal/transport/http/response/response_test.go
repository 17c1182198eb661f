package response

import (
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorDefaults(t *testing.T) {
	assert.Equal(t, "not found", Error(http.StatusNotFound, "").Message)
	assert.Equal(t, "custom", Error(http.StatusNotFound, "custom").Message)
	assert.Equal(t, "I'm a teapot", Error(http.StatusTeapot, "").Message)
}

func TestValidationDetails(t *testing.T) {
	type in struct {
		Email string `validate:"required,email"`
		Role  string `validate:"omitempty,oneof=user admin"`
	}
	err := validator.New().Struct(in{Email: "nope", Role: "root"})
	require.Error(t, err)

	r, ok := Validation(err)
	require.True(t, ok)
	assert.Equal(t, "validation failed", r.Message)
	require.Len(t, r.Details, 2)
	assert.Equal(t, FieldError{Field: "email", Rule: "email", Message: "email must be a valid email"}, r.Details[0])
	assert.Equal(t, "role", r.Details[1].Field)
	assert.Equal(t, "user admin", r.Details[1].Param)

	_, ok = Validation(assert.AnError)
	assert.False(t, ok)
}
