package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/A3Manav/jewellery-wishlist-service/pkg/errors"
)

func responseWith(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_MessageShape(t *testing.T) {
	err := ParseResponseError(responseWith(401, `{"message": "token expired"}`), "auth-api")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "token expired")
	assert.Contains(t, err.Error(), "auth-api")
}

func TestParseResponseError_EnvelopeShape(t *testing.T) {
	err := ParseResponseError(responseWith(400, `{"error": {"code": "BAD_ID", "message": "malformed product id"}}`), "catalog-api")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "malformed product id")
}

func TestParseResponseError_DuplicateAddIsAlreadyExists(t *testing.T) {
	// Explicit conflict status.
	err := ParseResponseError(responseWith(409, `{"message": "wishlist entry exists"}`), "auth-api")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	// Some endpoints signal duplicates with a 400 and a telling message.
	err = ParseResponseError(responseWith(400, `{"message": "product already in wishlist"}`), "auth-api")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	err = ParseResponseError(responseWith(400, `{"message": "duplicate entry"}`), "auth-api")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestParseResponseError_PlainBadRequestIsInvalidInput(t *testing.T) {
	err := ParseResponseError(responseWith(400, `{"message": "product id required"}`), "auth-api")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestParseResponseError_NotFound(t *testing.T) {
	err := ParseResponseError(responseWith(404, `{"message": "no such product"}`), "catalog-api")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParseResponseError_ServerError(t *testing.T) {
	err := ParseResponseError(responseWith(500, `{"message": "boom"}`), "auth-api")

	require.Error(t, err)
	var appErr *apperrors.AppError
	assert.NotErrorAs(t, err, &appErr)
	assert.Contains(t, err.Error(), "500")
}

func TestParseResponseError_NonJSONBody(t *testing.T) {
	err := ParseResponseError(responseWith(503, `upstream timeout`), "auth-api")

	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Contains(t, err.Error(), "upstream timeout")
}
