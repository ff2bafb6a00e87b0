package constants

// Import progress statuses. "uploading" precedes the import state machine,
// completed/failed/cancelled are terminal.
const (
	StatusUploading         = "uploading"
	StatusPending           = "pending"
	StatusExtracting        = "extracting"
	StatusParsing           = "parsing"
	StatusCreatingChat      = "creating_chat"
	StatusImportingMessages = "importing_messages"
	StatusProcessingMedia   = "processing_media"
	StatusCompleted         = "completed"
	StatusFailed            = "failed"
	StatusCancelled         = "cancelled"
)

// Response statuses
const (
	StatusOK              = "ok"
	StatusQueued          = "queued"
	StatusCancelRequested = "cancel_requested"
)

// Media categories
const (
	MediaImage    = "image"
	MediaVideo    = "video"
	MediaAudio    = "audio"
	MediaDocument = "document"
)

const ChatRoleOwner = "owner"

func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}
