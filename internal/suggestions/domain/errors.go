package domain

import "errors"

var (
	ErrMethodNotAllowed     = errors.New("method not allowed")
	ErrMissingConfiguration = errors.New("gemini api key is not configured")
	ErrInvalidRequestBody   = errors.New("invalid json body")
)

// Messages written to callers. They mirror the error kinds above.
const (
	MsgMethodNotAllowed     = "Method Not Allowed"
	MsgMissingConfiguration = "Server configuration error: GEMINI_API_KEY is not set."
	MsgInvalidRequestBody   = "Invalid JSON body"
	MsgUpstreamFailure      = "Failed to generate content from Gemini API."
)

// UpstreamError wraps a failed call to the generative-language API.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "upstream call failed: " + e.Details()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Details is the upstream message relayed to the caller.
func (e *UpstreamError) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
