package domain

// DefaultMaxTokens is the generation limit used when a request omits max_tokens.
const DefaultMaxTokens = 3000

// StoryRequest is the validated caller input for a single story generation.
type StoryRequest struct {
	Prompt    string
	MaxTokens int
}

// StoryResponse is returned when the upstream provider produced a result.
type StoryResponse struct {
	Story string `json:"story"`
}

// ErrorResponse is the error body shape for every failure the service reports.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	// RequestID is set on server-side failures so callers can quote it.
	RequestID string `json:"request_id,omitempty"`
}
