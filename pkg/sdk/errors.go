package talentdex

import "github.com/kailas-cloud/talentdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrConfiguration          = domain.ErrConfiguration
	ErrMissingCredential      = domain.ErrMissingCredential
	ErrSearchFunctionNotFound = domain.ErrSearchFunctionNotFound
	ErrEmbeddingService       = domain.ErrEmbeddingService
	ErrStore                  = domain.ErrStore
)
