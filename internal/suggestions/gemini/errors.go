package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrNoCandidates     = errors.New("gemini returned no candidates")
	ErrResponseTooLarge = errors.New("gemini response exceeds size limit")
)

// APIError is a failure reported by the Gemini API itself. Error returns the
// upstream message unchanged.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != "" {
		return fmt.Sprintf("gemini error (status %d %s)", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("gemini error (status %d)", e.StatusCode)
}

func blockedError(reason string) *APIError {
	return &APIError{Status: "BLOCKED", Message: "prompt blocked: " + reason}
}

func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var eb apiErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		apiErr.Message = eb.Error.Message
		apiErr.Status = eb.Error.Status
		return apiErr
	}

	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 512 {
		apiErr.Message = text
	}
	return apiErr
}

// stripURL drops the request URL from transport errors. The URL carries the
// API key as a query parameter.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request: %w", strings.ToLower(uerr.Op), uerr.Err)
	}
	return err
}
