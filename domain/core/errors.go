package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrSessionNotFound  = fmt.Errorf("%w: session", ErrNotFound)
	ErrArtifactNotFound = fmt.Errorf("%w: artifact", ErrNotFound)
	ErrDatasetNotFound  = fmt.Errorf("%w: dataset", ErrNotFound)

	// Dataset errors
	ErrMalformedDataset = errors.New("malformed dataset")
	ErrMissingColumn    = fmt.Errorf("%w: missing required column", ErrMalformedDataset)

	// Session errors
	ErrNotActive         = errors.New("annotation session is not active")
	ErrNoAnnotator       = fmt.Errorf("%w: annotator name is required", ErrNotActive)
	ErrNoData            = fmt.Errorf("%w: no data loaded", ErrNotActive)
	ErrUnsupportedAction = errors.New("action not supported by this annotation variant")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewMalformedError(line int, reason string) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedDataset, line, reason)
}

func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w %q", ErrMissingColumn, column)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsMalformedError(err error) bool {
	return errors.Is(err, ErrMalformedDataset)
}

func IsNotActiveError(err error) bool {
	return errors.Is(err, ErrNotActive)
}
