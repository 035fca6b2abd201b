package domain

// DefaultExistingTasks is used when the caller sends no usable task list.
const DefaultExistingTasks = "none"

// SuggestionRequest is built from the inbound body and dropped once the
// prompt exists.
type SuggestionRequest struct {
	ExistingTasks string
}

// SuggestionResponse is the success half of the relay result.
type SuggestionResponse struct {
	Suggestion string `json:"suggestion"`
}

// ErrorResponse is the failure half of the relay result.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
