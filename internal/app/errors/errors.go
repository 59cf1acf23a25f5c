package errors

import (
	"errors"
	"fmt"

	"echoscribe/internal/app/model"
)

// Common error values
var (
	// Acquisition errors
	ErrUnsupportedSource = New("unsupported source format")
	ErrUnreachableSource = New("source is unreachable")
	ErrEmptySource       = New("source contains no audio")

	// Invocation-surface validation, raised before any collaborator runs
	ErrMissingSource = New("source identifier is required")

	// Engine errors
	ErrTranscriptionEngine = New("transcription engine failed")
	ErrDiarizationEngine   = New("diarization engine failed")

	// Core defect: the alignment engine broke its own non-overlap guarantee
	ErrAlignmentInvariant = New("alignment invariant violated")

	// Output errors
	ErrPersistence = New("persisting aligned transcript failed")

	// Run deadline exceeded; distinct from every stage-classified failure
	ErrDeadlineExceeded = New("processing deadline exceeded")
)

// Error is a pipeline error optionally classified by the stage that produced it.
type Error struct {
	stage   model.Stage
	message string
	cause   error
}

// New creates a new unclassified error.
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted unclassified error.
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Stage wraps err with the stage it occurred in.
func Stage(stage model.Stage, err error) error {
	if err == nil {
		return nil
	}
	return &Error{stage: stage, message: string(stage) + " failed", cause: err}
}

// Stagef wraps err with a stage and formatted context.
func Stagef(stage model.Stage, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{stage: stage, message: fmt.Sprintf(format, args...), cause: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{message: message, cause: err}
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{message: fmt.Sprintf(format, args...), cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors by message so sentinel values survive wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// StageOf extracts the stage classification from an error chain. The second
// return value is false when no stage was recorded.
func StageOf(err error) (model.Stage, bool) {
	for err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			if pe.stage != "" {
				return pe.stage, true
			}
			err = pe.cause
			continue
		}
		err = errors.Unwrap(err)
	}
	return "", false
}

// IsTimeout reports whether the error chain carries the deadline sentinel.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrDeadlineExceeded)
}
