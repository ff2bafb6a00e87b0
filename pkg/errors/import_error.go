package errors

import (
	"errors"
	"fmt"
)

// ErrCancelled stops an import without recording a failure or retrying.
var ErrCancelled = errors.New("import cancelled")

const (
	CodeNoTranscript   = "no_transcript"
	CodeNoMessages     = "no_messages"
	CodeArchiveOpen    = "archive_open"
	CodeArchiveExtract = "archive_extract"
	CodeSourceMissing  = "source_missing"
	CodeStore          = "store_error"
	CodePanic          = "panic"
)

// ArchiveError reports a failure opening or extracting an uploaded archive.
type ArchiveError struct {
	Op   string
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("archive %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("archive %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

var ErrNoTranscript = errors.New("no transcript file found")

// RecordError is a persistence failure for one parsed record. It is collected
// into a batch report and never aborts the batch.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// ImportError aborts an import attempt and feeds the retry policy.
type ImportError struct {
	Stage string
	Code  string
	Err   error
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Code, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

func NewImportError(stage, code string, err error) *ImportError {
	return &ImportError{Stage: stage, Code: code, Err: err}
}
