package entity

import (
	"errors"
	"fmt"
)

// Domain errors of the ingestion pipeline.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrStaleAnalysis   = errors.New("stale analysis")
	ErrInvalidOverride = errors.New("invalid override")
	ErrStorage         = errors.New("storage failure")
	ErrBookNotFound    = errors.New("custom book not found")
	ErrDuplicateBook   = errors.New("custom book already exists")
)

// ErrorKind classifies pipeline failures for callers.
type ErrorKind string

const (
	KindValidation      ErrorKind = "ValidationError"
	KindStaleAnalysis   ErrorKind = "StaleAnalysis"
	KindInvalidOverride ErrorKind = "InvalidOverride"
	KindNotFound        ErrorKind = "NotFound"
	KindConflict        ErrorKind = "Conflict"
	KindStorage         ErrorKind = "StorageError"
)

var kindSentinels = map[ErrorKind]error{
	KindValidation:      ErrInvalidInput,
	KindStaleAnalysis:   ErrStaleAnalysis,
	KindInvalidOverride: ErrInvalidOverride,
	KindNotFound:        ErrBookNotFound,
	KindConflict:        ErrDuplicateBook,
	KindStorage:         ErrStorage,
}

// IngestError is a classified failure. Message is safe to show to an admin.
type IngestError struct {
	Kind    ErrorKind
	Message string
	Token   *TokenKey
	Err     error
}

func (e *IngestError) Error() string {
	if e.Err != nil && e.Kind == KindStorage {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *IngestError) Unwrap() error { return e.Err }

// Is matches the sentinel that corresponds to the error kind.
func (e *IngestError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf reports the kind of err. Sentinel errors wrapped with fmt.Errorf are
// recognised too; anything unclassified is a storage error.
func KindOf(err error) ErrorKind {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindStorage
}

func ValidationError(format string, args ...any) error {
	return &IngestError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func StaleAnalysisError() error {
	return &IngestError{
		Kind:    KindStaleAnalysis,
		Message: "Analysis digest mismatch. Re-run Analyze before importing.",
	}
}

func InvalidOverrideError(key TokenKey) error {
	return &IngestError{
		Kind:    KindInvalidOverride,
		Message: "Invalid override for token " + key.String(),
		Token:   &key,
	}
}

// StorageError wraps err unless it is already classified.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ie *IngestError
	if errors.As(err, &ie) {
		return err
	}
	if errors.Is(err, ErrBookNotFound) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrDuplicateBook) {
		return err
	}
	return &IngestError{Kind: KindStorage, Message: op, Err: err}
}
