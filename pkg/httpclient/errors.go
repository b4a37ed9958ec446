package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response body and maps it
// to an AppError, keeping the remote code and message when the body uses the
// storefront error envelope.
func ParseResponseError(resp *http.Response, remote string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", remote, resp.StatusCode, err)
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) != nil || env.Error == nil {
		return fmt.Errorf("%s returned status %d: %s", remote, resp.StatusCode, body)
	}

	msg := remote + ": " + env.Error.Message
	switch resp.StatusCode {
	case http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: msg, Status: http.StatusNotFound, Err: apperrors.ErrNotFound}
	case http.StatusBadRequest:
		return apperrors.InvalidInput(msg)
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case http.StatusConflict:
		return &apperrors.AppError{Code: env.Error.Code, Message: msg, Status: http.StatusConflict, Err: apperrors.ErrAlreadyExists}
	case http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(msg, nil)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s server error (%d/%s): %s", remote, resp.StatusCode, env.Error.Code, env.Error.Message)
	}
	return &apperrors.AppError{Code: env.Error.Code, Message: msg, Status: resp.StatusCode}
}
