package core

import "errors"

var (
	// ErrContainerNotFound is returned when no selector of a chain matched.
	ErrContainerNotFound = errors.New("container not found")
	// ErrExtraction is returned when url or title could not be assembled from any tier.
	ErrExtraction = errors.New("could not extract track data")
	// ErrUnsupportedPage is returned when the page kind has no extraction strategy.
	ErrUnsupportedPage = errors.New("page kind does not support extraction")
	// ErrClipboard is returned when the clipboard rejected a write.
	ErrClipboard = errors.New("clipboard write failed")
	// ErrStorage is returned when the key-value store rejected an operation.
	ErrStorage = errors.New("storage operation failed")
	// ErrValidation is returned for settings that fail validation.
	ErrValidation = errors.New("invalid settings")
	// ErrCancelled is returned when the user declined the confirmation gate.
	ErrCancelled = errors.New("cancelled by user")
)
