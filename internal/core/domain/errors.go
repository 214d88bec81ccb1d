package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrTemporary       = errors.New("temporary failure")
	ErrConflict        = errors.New("conflict")
	ErrRecordNotFound  = errors.New("record not found")
	ErrMappingNotFound = errors.New("abbreviation mapping not found")

	ErrMalformedDocument   = errors.New("malformed document")
	ErrAnalysisFailed      = errors.New("analysis failed")
	ErrDuplicateDetected   = errors.New("duplicate record detected")
	ErrDestinationNotFound = errors.New("destination folder not found")
	ErrUploadPartial       = errors.New("artifact upload incomplete")
	ErrPersistenceFailed   = errors.New("record persistence failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// DuplicateError carries the conflicting record so the caller can resolve
// the collision manually instead of silently dropping the upload.
type DuplicateError struct {
	Matched *DocumentRecord
}

func (e *DuplicateError) Error() string {
	if e.Matched == nil {
		return ErrDuplicateDetected.Error()
	}
	return fmt.Sprintf("%s: matches record %s (%s)", ErrDuplicateDetected, e.Matched.ID, e.Matched.CanonicalName)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateDetected }

// DestinationNotFoundError names the exact missing path segment so the
// failure is actionable without guesswork.
type DestinationNotFoundError struct {
	Segment string
	Path    []string
}

func (e *DestinationNotFoundError) Error() string {
	return fmt.Sprintf("%s: segment %q in path %s", ErrDestinationNotFound, e.Segment, strings.Join(e.Path, "/"))
}

func (e *DestinationNotFoundError) Unwrap() error { return ErrDestinationNotFound }

// UploadPartialError reports which artifact made it to storage when the
// blocking upload policy is in force.
type UploadPartialError struct {
	Original ArtifactOutcome
	Summary  ArtifactOutcome
}

func (e *UploadPartialError) Error() string {
	return fmt.Sprintf("%s: original uploaded=%t summary uploaded=%t",
		ErrUploadPartial, e.Original.Uploaded(), e.Summary.Uploaded())
}

func (e *UploadPartialError) Unwrap() error { return ErrUploadPartial }
