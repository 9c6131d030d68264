package service

import "errors"

// Error kinds surfaced by Submit. Client-input kinds map to 400, the rest to 500.
// Every returned error wraps exactly one of these, and collaborator failures also
// wrap the underlying cause.
var (
	ErrPayloadTooLarge         = errors.New("file too large")
	ErrUnsupportedType         = errors.New("unsupported file type")
	ErrInvalidArchiveContents  = errors.New("invalid archive contents")
	ErrArchiveExtractionFailed = errors.New("failed to extract zip")
	ErrStorageWriteFailed      = errors.New("upload failed")
	ErrMetadataInsertFailed    = errors.New("db insert failed")
	ErrPartiallyFailed         = errors.New("upload partially failed")
)

// IsClientError reports whether err was caused by the uploaded input rather than a collaborator.
func IsClientError(err error) bool {
	return errors.Is(err, ErrPayloadTooLarge) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrInvalidArchiveContents) ||
		errors.Is(err, ErrArchiveExtractionFailed)
}
