package types

import "errors"

// Failure taxonomy for the ingestion and query paths. Callers match with
// errors.Is; every component wraps its underlying error around one of these.
var (
	ErrUnsupportedType   = errors.New("unsupported document type")
	ErrExtraction        = errors.New("document extraction failed")
	ErrEmptyContent      = errors.New("no text content extracted")
	ErrEncoding          = errors.New("embedding failed")
	ErrIndexWrite        = errors.New("index write failed")
	ErrIndexQuery        = errors.New("index query failed")
	ErrGenerationBackend = errors.New("generation backend failed")
)
