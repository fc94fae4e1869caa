package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeMappings(t *testing.T) {
	tests := []struct {
		code       Code
		status     string
		httpStatus int
	}{
		{InvalidInput, "INVALID_INPUT", http.StatusBadRequest},
		{AuthenticationFail, "AUTHENTICATION_FAIL", http.StatusUnauthorized},
		{EmailAlreadyExists, "EMAIL_ALREADY_EXISTS", http.StatusConflict},
		{ResourceIDAlreadyExists, "RESOURCE_ID_ALREADY_EXISTS", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.code.Status())
			assert.Equal(t, tt.httpStatus, tt.code.HTTPStatus())
			assert.NotEmpty(t, tt.code.Message())
		})
	}
}

func TestErrorMessageOverride(t *testing.T) {
	err := New(EmailAlreadyExists)
	assert.Equal(t, "This email is already registered.", err.Error())

	err = NewWithMessage(InvalidInput, "No CSRF token in Cookie.")
	assert.Equal(t, "No CSRF token in Cookie.", err.Error())
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("signup: %w", New(ResourceIDAlreadyExists))

	code, ok := CodeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ResourceIDAlreadyExists, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)

	assert.True(t, IsCode(wrapped, ResourceIDAlreadyExists))
	assert.False(t, IsCode(wrapped, EmailAlreadyExists))
}

func TestDetailsCarried(t *testing.T) {
	err := NewWithDetails(InvalidInput, map[string]string{"location": "email"})
	assert.Len(t, err.Details, 1)
}
