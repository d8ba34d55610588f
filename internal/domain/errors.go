package domain

import "errors"

var (
	// ErrInvalidQuery signals an empty or malformed search query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrConfiguration signals an operator-correctable setup defect.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingCredential signals an absent API credential for an external service.
	ErrMissingCredential = errors.New("missing credential")
	// ErrSearchFunctionNotFound signals that the store has no similarity-search routine deployed.
	ErrSearchFunctionNotFound = errors.New("similarity search function not found")

	// ErrEmbeddingService signals an embedding provider failure.
	ErrEmbeddingService = errors.New("embedding service error")
	// ErrStore signals a retrieval failure other than a missing search function.
	ErrStore = errors.New("store error")
	// ErrSynthesis signals a justification provider failure. Never surfaced to callers.
	ErrSynthesis = errors.New("synthesis error")
)

// ConfigurationError ties a specific missing piece to ErrConfiguration.
// Kind is one of ErrMissingCredential or ErrSearchFunctionNotFound.
type ConfigurationError struct {
	Kind   error
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Detail == "" {
		return ErrConfiguration.Error() + ": " + e.Kind.Error()
	}
	return ErrConfiguration.Error() + ": " + e.Kind.Error() + ": " + e.Detail
}

// Unwrap exposes both the category and the specific kind to errors.Is.
func (e *ConfigurationError) Unwrap() []error { return []error{ErrConfiguration, e.Kind} }

// NewMissingCredential reports an absent credential for the named service.
func NewMissingCredential(service string) error {
	return &ConfigurationError{Kind: ErrMissingCredential, Detail: service}
}

// NewSearchFunctionNotFound reports the missing search routine (index or SQL function) by name.
func NewSearchFunctionNotFound(name string) error {
	return &ConfigurationError{Kind: ErrSearchFunctionNotFound, Detail: name}
}
