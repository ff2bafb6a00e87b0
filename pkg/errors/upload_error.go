package errors

import "fmt"

// UploadError is returned synchronously to upload callers. Code is stable and
// maps to an HTTP status in HandleError; Data carries extra response fields.
type UploadError struct {
	Code    string
	Message string
	Err     error
	Data    map[string]int
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *UploadError) Unwrap() error { return e.Err }

const (
	CodeNotFound          = "not_found"
	CodeSessionNotFound   = "session_not_found"
	CodeUnauthorized      = "unauthorized"
	CodeUnauthenticated   = "unauthenticated"
	CodeInvalidChunk      = "invalid_chunk"
	CodeInvalidChunkCount = "invalid_chunk_count"
	CodeInvalidRequest    = "invalid_request"
	CodeIncompleteUpload  = "incomplete_upload"
	CodeFinalizeFailed    = "finalize_failed"
	CodeChecksumMismatch  = "checksum_mismatch"
	CodeAlreadyFinished   = "already_finished"
	CodeInternal          = "internal_error"
)

var (
	ErrNotFound = func(err error) *UploadError {
		return &UploadError{Code: CodeNotFound, Message: "Import not found", Err: err}
	}
	ErrSessionNotFound = func(err error) *UploadError {
		return &UploadError{Code: CodeSessionNotFound, Message: "Upload session not found", Err: err}
	}
	ErrUnauthorized = func(err error) *UploadError {
		return &UploadError{Code: CodeUnauthorized, Message: "Not the owner of this upload", Err: err}
	}
	ErrUnauthenticated = func(err error) *UploadError {
		return &UploadError{Code: CodeUnauthenticated, Message: "Missing user identity", Err: err}
	}
	ErrInvalidChunk = func(err error) *UploadError {
		return &UploadError{Code: CodeInvalidChunk, Message: "Invalid chunk", Err: err}
	}
	ErrInvalidChunkCount = func(err error) *UploadError {
		return &UploadError{Code: CodeInvalidChunkCount, Message: "total_chunks must be at least 1", Err: err}
	}
	ErrInvalidRequest = func(err error) *UploadError {
		return &UploadError{Code: CodeInvalidRequest, Message: "Invalid request", Err: err}
	}
	ErrIncompleteUpload = func(expected, received int) *UploadError {
		return &UploadError{
			Code:    CodeIncompleteUpload,
			Message: fmt.Sprintf("Upload incomplete: %d/%d chunks", received, expected),
			Data:    map[string]int{"expected": expected, "received": received},
		}
	}
	ErrFinalizeFailed = func(err error) *UploadError {
		return &UploadError{Code: CodeFinalizeFailed, Message: "Could not assemble uploaded file", Err: err}
	}
	ErrChecksumMismatch = func(err error) *UploadError {
		return &UploadError{Code: CodeChecksumMismatch, Message: "Assembled file checksum mismatch", Err: err}
	}
	ErrAlreadyFinished = func(err error) *UploadError {
		return &UploadError{Code: CodeAlreadyFinished, Message: "Import already finished", Err: err}
	}
	ErrInternal = func(err error) *UploadError {
		return &UploadError{Code: CodeInternal, Message: "Internal server error", Err: err}
	}
)
