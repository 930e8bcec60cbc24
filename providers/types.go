package providers

import "errors"

// ErrNotConfigured marks an adapter that short-circuited because its
// credential is absent. Callers treat it as a skip, not a failure.
var ErrNotConfigured = errors.New("provider not configured")

// Granularity is the finest timing unit a provider supplies.
type Granularity string

const (
	GranularityLine     Granularity = "line"
	GranularityWord     Granularity = "word"
	GranularitySyllable Granularity = "syllable"
)

// Result is the raw outcome of one adapter attempt. It is created per
// attempt and consumed immediately by the parser, never retained.
type Result struct {
	// RawPayload is the timed-text (or plain-text) lyrics body.
	RawPayload string `json:"rawPayload,omitempty"`

	// SourceName identifies which provider produced the payload.
	SourceName string `json:"sourceName"`

	// Synced reports whether timestamps are present at all.
	Synced bool `json:"synced"`

	// Granularity is how fine the timing is when Synced is true.
	Granularity Granularity `json:"granularity,omitempty"`
}

// ProviderError represents an error from a provider with additional context
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}
