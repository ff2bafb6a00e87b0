package handlers

import (
	"fmt"

	"chat-importer/internal/domain/dto"
	"chat-importer/internal/usecases"
	"chat-importer/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type UploadHandler struct {
	uploadService usecases.UploadService
	maxChunkSize  int64
}

func NewUploadHandler(uploadService usecases.UploadService, maxChunkSize int64) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxChunkSize:  maxChunkSize,
	}
}

// InitiateUpload
//
// @Summary      Initiate Upload
// @Description  Declares a chunked upload and creates its import progress record
// @Tags         Upload
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string                     true "Owner user id"
// @Param        request    body      dto.InitiateUploadRequest  true "Upload declaration"
// @Success      200        {object}  dto.InitiateUploadResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      401        {object}  dto.ErrorResponse
// @Router       /upload/init [post]
func (h *UploadHandler) InitiateUpload(c *fiber.Ctx) error {
	var req dto.InitiateUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleError(c, errors.ErrInvalidRequest(err))
	}

	resp, err := h.uploadService.Initiate(c.UserContext(), currentUser(c), &req)
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}

// UploadChunk
//
// @Summary      Upload Chunk
// @Description  Stores one chunk; re-sending an existing index is a no-op
// @Tags         Upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        X-User-ID    header    string true "Owner user id"
// @Param        upload_id    formData  string true "Upload ID"
// @Param        chunk_index  formData  int    true "Zero based chunk index"
// @Param        chunk        formData  file   true "Chunk bytes"
// @Success      200          {object}  dto.UploadChunkResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Failure      403          {object}  dto.ErrorResponse
// @Failure      404          {object}  dto.ErrorResponse
// @Router       /upload/chunk [post]
func (h *UploadHandler) UploadChunk(c *fiber.Ctx) error {
	req := &dto.UploadChunkRequestDTO{
		UploadID:   c.FormValue("upload_id"),
		ChunkIndex: c.FormValue("chunk_index"),
	}
	if req.UploadID == "" || req.ChunkIndex == "" {
		return errors.HandleError(c, errors.ErrInvalidRequest(fmt.Errorf("upload_id and chunk_index are required")))
	}

	fileHeader, err := c.FormFile("chunk")
	if err != nil {
		// eski istemciler "file" alanını kullanıyor
		fileHeader, err = c.FormFile("file")
	}
	if err != nil {
		return errors.HandleError(c, errors.ErrInvalidChunk(err))
	}
	if h.maxChunkSize > 0 && fileHeader.Size > h.maxChunkSize {
		return errors.HandleError(c, errors.ErrInvalidChunk(fmt.Errorf("chunk is %d bytes, limit %d", fileHeader.Size, h.maxChunkSize)))
	}

	// Dosyayı aç
	file, err := fileHeader.Open()
	if err != nil {
		return errors.HandleError(c, errors.ErrInvalidChunk(err))
	}
	defer file.Close()

	resp, err := h.uploadService.UploadChunk(c.UserContext(), currentUser(c), req, file)
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}

// FinalizeUpload
//
// @Summary      Finalize Upload
// @Description  Assembles the chunks in index order and queues the import
// @Tags         Upload
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string                     true "Owner user id"
// @Param        request    body      dto.FinalizeUploadRequest  true "Finalize request"
// @Success      200        {object}  dto.FinalizeUploadResponse
// @Failure      400        {object}  dto.ErrorResponse "Incomplete upload carries expected and received"
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      500        {object}  dto.ErrorResponse
// @Router       /upload/finalize [post]
func (h *UploadHandler) FinalizeUpload(c *fiber.Ctx) error {
	var req dto.FinalizeUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleError(c, errors.ErrInvalidRequest(err))
	}

	resp, err := h.uploadService.Finalize(c.UserContext(), currentUser(c), &req)
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}

// UploadStatus
//
// @Summary      Get Upload Status
// @Description  Returns received and declared chunk counts of an upload
// @Tags         Upload
// @Produce      json
// @Param        X-User-ID  header    string true "Owner user id"
// @Param        upload_id  query     string true "Upload ID"
// @Success      200        {object}  dto.UploadStatusResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /upload/status [get]
func (h *UploadHandler) UploadStatus(c *fiber.Ctx) error {
	req := &dto.UploadStatusRequestDTO{UploadID: c.Query("upload_id")}

	resp, err := h.uploadService.Status(c.UserContext(), currentUser(c), req)
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}

// CancelUpload
//
// @Summary      Cancel Upload
// @Description  Drops the received chunks and cancels the linked import
// @Tags         Upload
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string                      true "Owner user id"
// @Param        request    body      dto.CancelUploadRequestDTO  true "Cancel upload request"
// @Success      200        {object}  dto.CancelResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /upload/cancel [post]
func (h *UploadHandler) CancelUpload(c *fiber.Ctx) error {
	var req dto.CancelUploadRequestDTO
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleError(c, errors.ErrInvalidRequest(err))
	}

	resp, err := h.uploadService.Cancel(c.UserContext(), currentUser(c), &req)
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}
