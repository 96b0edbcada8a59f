package review

import "github.com/kailas-cloud/review/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUnknownTool            = domain.ErrUnknownTool
	ErrInvalidArguments       = domain.ErrInvalidArguments
	ErrProductNotFound        = domain.ErrProductNotFound
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmbeddingTimeout       = domain.ErrEmbeddingTimeout
)
