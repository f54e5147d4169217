package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates no normaliser handles a document's MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDocumentNotFound indicates the source document is missing.
	// Indexing aborts before touching the vector store.
	ErrDocumentNotFound = errors.New("source document not found")

	// ErrEmbeddingUnavailable indicates the embedding service cannot be reached
	// or is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store cannot be opened
	// or queried.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// collection's recorded dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrConfigInvalid indicates settings that cannot be used as loaded.
	ErrConfigInvalid = errors.New("invalid configuration")
)
