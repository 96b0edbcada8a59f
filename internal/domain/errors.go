package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound signals a missing catalog product.
	ErrProductNotFound = errors.New("product not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrRequirementsMissing signals an empty example review.
	ErrRequirementsMissing = errors.New("example review or user requirements are required")
	// ErrInvalidRatingBounds signals a max rating below the min rating.
	ErrInvalidRatingBounds = errors.New("max_rating must not be below min_rating")
	// ErrInvalidArguments signals malformed tool arguments.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrUnknownTool signals a tool name that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingTimeout signals that the embedding call exceeded its deadline.
	ErrEmbeddingTimeout = errors.New("embedding timeout")
)
