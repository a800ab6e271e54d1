package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrModelUnavailable signals that the embedding or generation backend
	// cannot be reached. Fatal at startup, surfaced as 503 at runtime.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrStoreUnavailable signals that the vector store is unreachable.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrUnknownFilterField signals a filter referencing a field the
	// collection does not index. A configuration error, never a silent no-match.
	ErrUnknownFilterField = errors.New("unknown filter field")
	// ErrVectorDimMismatch signals a vector dimension mismatch between the
	// embedding output and the collection schema.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidDocument signals a corpus document failing ingestion validation.
	ErrInvalidDocument = errors.New("invalid document")
)
