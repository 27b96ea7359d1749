package porting

import "errors"

// Structure-class errors. All of these are detected before any transaction
// opens and map to a bad-request at the call surface.
var (
	// ErrMalformedArchive reports a container that cannot be opened as a zip.
	ErrMalformedArchive = errors.New("malformed archive")
	// ErrMissingDocument reports an archive without the required document entry.
	ErrMissingDocument = errors.New("archive is missing the export document")
	// ErrMalformedDocument reports a document entry that is not valid JSON of
	// the expected shape.
	ErrMalformedDocument = errors.New("malformed export document")
	// ErrAssetNotFound reports a logical path absent from the archive's binary
	// section. During reconciliation it is recorded and skipped, never fatal.
	ErrAssetNotFound = errors.New("asset not found in archive")
)
