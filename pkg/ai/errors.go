package ai

import "fmt"

// ExternalServiceError normalizes every transport-level provider failure:
// network errors, timeouts, non-2xx responses, and empty completions all
// surface as this one type. The client never retries internally.
type ExternalServiceError struct {
	Provider string
	Message  string
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("ai provider %s: %s", e.Provider, e.Message)
}

// NewExternalServiceError wraps err for the given provider.
func NewExternalServiceError(provider string, err error) *ExternalServiceError {
	return &ExternalServiceError{Provider: provider, Message: err.Error()}
}

// ExtractionError indicates the raw model output could not be parsed into the
// requested shape after all extraction strategies were exhausted.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract evaluation: %s", e.Reason)
}
