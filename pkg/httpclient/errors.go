package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/A3Manav/jewellery-wishlist-service/pkg/errors"
)

// upstreamErrorBody covers the two error shapes the storefront API produces:
// a bare {"message": "..."} and the enveloped {"error": {"code", "message"}}.
type upstreamErrorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError translates a non-2xx upstream response into an AppError
// preserving the upstream's message where possible. The response body is
// fully consumed and closed. Callers must only invoke this for error
// statuses.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", upstream, resp.StatusCode, err)
	}

	code := ""
	message := strings.TrimSpace(string(raw))

	var body upstreamErrorBody
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Error != nil && body.Error.Message != "":
			code, message = body.Error.Code, body.Error.Message
		case body.Message != "":
			message = body.Message
		}
	}

	return mapUpstreamError(resp.StatusCode, code, message, upstream)
}

// mapUpstreamError converts an upstream status and message into the matching
// AppError. Duplicate-add responses (409, or 400 mentioning an existing
// entry) surface as ErrAlreadyExists so callers can treat them as the
// idempotent case.
func mapUpstreamError(status int, code, message, upstream string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusConflict:
		return apperrors.AlreadyExists(qualified)
	case status == http.StatusBadRequest && mentionsDuplicate(message):
		return apperrors.AlreadyExists(qualified)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream, message)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualified)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", upstream, status, code, message)
	default:
		return &apperrors.AppError{Code: code, Message: qualified, Status: status}
	}
}

func mentionsDuplicate(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "already") || strings.Contains(m, "duplicate")
}
