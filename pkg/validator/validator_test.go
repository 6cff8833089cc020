package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidate_Passes(t *testing.T) {
	assert.NoError(t, Validate(loginForm{Email: "jane@example.com", Password: "secret1"}))
}

func TestValidate_ReportsFields(t *testing.T) {
	err := Validate(loginForm{Email: "not-an-email", Password: "abc"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	fields := valErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "must be at least 6 characters", fields["Password"])
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest("POST", "/login",
		strings.NewReader(`{"email": "jane@example.com", "password": "secret1"}`))

	var form loginForm
	require.NoError(t, DecodeAndValidate(req, &form))
	assert.Equal(t, "jane@example.com", form.Email)
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{not json`))

	var form loginForm
	err := DecodeAndValidate(req, &form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_InvalidPayload(t *testing.T) {
	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"email": "", "password": ""}`))

	var form loginForm
	err := DecodeAndValidate(req, &form)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Len(t, valErr.Fields(), 2)
}
