package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/ga4x/internal/shared"
)

var (
	// ErrForbidden indicates the token lacks access to the property.
	ErrForbidden = errors.New("analytics access forbidden")
	// ErrPropertyNotFound indicates the property does not exist.
	ErrPropertyNotFound = errors.New("analytics property not found")
)

// APIError is a non-2xx Data API response.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("%s: status %d: %s", shared.ErrAPIRequest, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: status %d (%s): %s", shared.ErrAPIRequest, e.StatusCode, e.Status, e.Message)
}

// Unwrap exposes [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// Is matches [ErrForbidden] and [ErrPropertyNotFound] by status.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden || e.Status == "PERMISSION_DENIED"
	case ErrPropertyNotFound:
		return e.StatusCode == http.StatusNotFound || e.Status == "NOT_FOUND"
	}
	return false
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// decodeAPIError builds an [APIError] from a Google error envelope, falling back to the raw body.
func decodeAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Message: string(body)}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Status = envelope.Error.Status
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}
