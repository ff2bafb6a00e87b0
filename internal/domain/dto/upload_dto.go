package dto

type InitiateUploadRequest struct {
	Filename        string `json:"filename" form:"filename"`
	TotalChunks     int    `json:"total_chunks" form:"total_chunks"`
	FileSize        int64  `json:"file_size" form:"file_size"`
	ChatName        string `json:"chat_name" form:"chat_name"`
	ChatDescription string `json:"chat_description" form:"chat_description"`
	Checksum        string `json:"checksum,omitempty" form:"checksum"` // sha256 hex, opsiyonel
}

type InitiateUploadResponse struct {
	UploadID   string `json:"upload_id"`
	ProgressID string `json:"progress_id"`
}

type UploadChunkRequestDTO struct {
	UploadID   string `json:"upload_id" form:"upload_id"`
	ChunkIndex string `json:"chunk_index" form:"chunk_index"`
}

type UploadChunkResponse struct {
	Success        bool `json:"success"`
	UploadedChunks int  `json:"uploaded_chunks"`
	TotalChunks    int  `json:"total_chunks"`
	Skipped        bool `json:"skipped,omitempty"`
}

type FinalizeUploadRequest struct {
	UploadID        string `json:"upload_id" form:"upload_id"`
	ChatName        string `json:"chat_name" form:"chat_name"`
	ChatDescription string `json:"chat_description" form:"chat_description"`
}

type FinalizeUploadResponse struct {
	Success     bool   `json:"success"`
	ProgressID  string `json:"progress_id"`
	RedirectURL string `json:"redirect_url"`
}

type UploadStatusRequestDTO struct {
	UploadID string `json:"upload_id" query:"upload_id"`
}

type UploadStatusResponse struct {
	UploadedChunks int    `json:"uploaded_chunks"`
	TotalChunks    int    `json:"total_chunks"`
	Status         string `json:"status"`
}

type CancelUploadRequestDTO struct {
	UploadID string `json:"upload_id" form:"upload_id"`
}

type CancelResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Expected int    `json:"expected,omitempty"`
	Received int    `json:"received,omitempty"`
}
