package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidID       = errors.New("invalid identifier")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoRows          = errors.New("no rows found in file")
	ErrTooManyRows     = errors.New("too many rows in file")
	ErrPipelineTimeout = errors.New("import timed out")
	ErrStoreRequired   = errors.New("store_id or store_slug is required")
)

// ParseError means the payload is not a readable spreadsheet.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unreadable spreadsheet: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NoValidRowsError means the file was readable and had rows, but none of
// them passed validation.
type NoValidRowsError struct {
	RowsFound int
	Hint      string
}

func (e *NoValidRowsError) Error() string {
	msg := fmt.Sprintf("no valid rows found (%d rows in file)", e.RowsFound)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

// StorageError wraps a rejected write. Its message is the storage layer's
// message, unchanged.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// ReferenceLookupError is a failed slug/name lookup. The ingest pipeline
// recovers from it locally and never returns it to callers.
type ReferenceLookupError struct {
	Kind string
	Name string
	Err  error
}

func (e *ReferenceLookupError) Error() string {
	return fmt.Sprintf("%s lookup %q: %v", e.Kind, e.Name, e.Err)
}

func (e *ReferenceLookupError) Unwrap() error { return e.Err }
