package genie

import "context"

// Provider is a streaming completion backend for the assistant endpoint.
type Provider interface {
	// Stream generates a completion for prompt, calling emit for each chunk
	// of text as it becomes available.
	Stream(ctx context.Context, prompt string, emit func(chunk string) error) error
	Name() string
}

// ProviderError is an error from a completion provider.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
)
