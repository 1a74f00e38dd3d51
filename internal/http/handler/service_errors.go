package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"casedocs/internal/filetype"
	"casedocs/internal/service"
)

// writeServiceError translates service-layer errors into the standard
// error envelope. Validation failures keep their detail (the detected
// MIME type, the size ceiling); everything unexpected collapses to a
// generic 500 so internals never leak.
func writeServiceError(c *fiber.Ctx, err error) error {
	var unsupported *filetype.UnsupportedTypeError
	var tooLarge *filetype.TooLargeError

	switch {
	case errors.As(err, &unsupported):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE", unsupported.Error())
	case errors.As(err, &tooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Sprintf("file too large, maximum size is %d bytes", tooLarge.Limit))
	case errors.Is(err, service.ErrEmptyFile):
		return writeError(c, fiber.StatusBadRequest, "EMPTY_FILE", "file is empty")
	case errors.Is(err, service.ErrInvalidDocumentType):
		return writeError(c, fiber.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "invalid document type")
	case errors.Is(err, service.ErrCaseFieldsRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_CASE", "case_number and title are required")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	case errors.Is(err, service.ErrCaseNotFound):
		return writeError(c, fiber.StatusNotFound, "CASE_NOT_FOUND", "case not found")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrNotPDF):
		return writeError(c, fiber.StatusBadRequest, "NOT_PDF", "ocr is only available for PDF documents")
	case errors.Is(err, service.ErrOCRUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "OCR_UNAVAILABLE", "ocr service unavailable")
	case errors.Is(err, service.ErrOCRFailed):
		return writeError(c, fiber.StatusBadGateway, "OCR_FAILED", "ocr failed")
	case errors.Is(err, service.ErrStorageWrite):
		return writeError(c, fiber.StatusInternalServerError, "STORAGE_WRITE_FAILED", "failed to store file")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
