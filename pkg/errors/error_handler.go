package errors

import (
	"errors"

	"chat-importer/internal/pkg/logger"
	"chat-importer/pkg/errors/i18n"

	"github.com/gofiber/fiber/v2"
)

var log = logger.Nop()

// SetLogger replaces the logger used for errors that are hidden from clients.
func SetLogger(l *logger.Logger) {
	if l != nil {
		log = l.With("component", "http_errors")
	}
}

func statusFor(code string) int {
	switch code {
	case CodeNotFound, CodeSessionNotFound:
		return fiber.StatusNotFound
	case CodeUnauthorized:
		return fiber.StatusForbidden
	case CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case CodeInvalidChunk, CodeInvalidChunkCount, CodeInvalidRequest, CodeIncompleteUpload, CodeChecksumMismatch:
		return fiber.StatusBadRequest
	case CodeAlreadyFinished:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleError writes the {"error","message"} body for err. Only UploadError
// codes reach the client; anything else becomes internal_error.
func HandleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var ue *UploadError
	if errors.As(err, &ue) {
		if ue.Err != nil {
			log.Warn("upload error", "code", ue.Code, "error", ue.Err)
		}

		body := fiber.Map{
			"error":   ue.Code,
			"message": i18n.TOr(ue.Code, ue.Message),
		}
		for k, v := range ue.Data {
			body[k] = v
		}
		return c.Status(statusFor(ue.Code)).JSON(body)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":   CodeInvalidRequest,
			"message": fe.Message,
		})
	}

	log.Error("unexpected error", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   CodeInternal,
		"message": i18n.T(CodeInternal),
	})
}
