package tikko

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes produced by normalization when the upstream body carries none.
const (
	CodeNetworkError = "NETWORK_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeUnknownError = "UNKNOWN_ERROR"
)

// APIError is the normalized shape of any upstream or transport failure.
// Status 0 means the request never produced an HTTP response.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tikko api: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("tikko api: %s (%d)", e.Code, e.Status)
}

// AsAPIError unwraps err into an *APIError if there is one in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "BAD_REQUEST"
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return "FORBIDDEN"
	case status == http.StatusNotFound:
		return "NOT_FOUND"
	case status == http.StatusConflict:
		return "CONFLICT"
	case status == http.StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case status == http.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	case status >= 500:
		return "UPSTREAM_ERROR"
	default:
		return CodeUnknownError
	}
}
