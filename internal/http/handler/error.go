package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"prdapi/internal/http/middleware"
	"prdapi/internal/service"
)

// errorPayload defines the standardized error response body.
// Detail repeats the message at the top level for clients written against {"detail": ...}.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Detail    string        `json:"detail"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "FILE_REQUIRED", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable message
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Detail:    message,
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// uploadErrorCodes is checked in order; ErrPartiallyFailed also wraps ErrMetadataInsertFailed.
var uploadErrorCodes = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrPayloadTooLarge, fiber.StatusBadRequest, "FILE_TOO_LARGE"},
	{service.ErrUnsupportedType, fiber.StatusBadRequest, "UNSUPPORTED_TYPE"},
	{service.ErrInvalidArchiveContents, fiber.StatusBadRequest, "INVALID_ARCHIVE_CONTENTS"},
	{service.ErrArchiveExtractionFailed, fiber.StatusBadRequest, "ARCHIVE_EXTRACTION_FAILED"},
	{service.ErrStorageWriteFailed, fiber.StatusInternalServerError, "STORAGE_WRITE_FAILED"},
	{service.ErrPartiallyFailed, fiber.StatusInternalServerError, "PARTIALLY_FAILED"},
	{service.ErrMetadataInsertFailed, fiber.StatusInternalServerError, "METADATA_INSERT_FAILED"},
}

// writeUploadError maps a pipeline error to its status and code. The message is the
// full error text, so collaborator causes reach the caller verbatim.
func writeUploadError(c *fiber.Ctx, err error) error {
	for _, m := range uploadErrorCodes {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, err.Error())
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusRequestEntityTooLarge:
			// Bodies past the transport limit get the same answer as the pipeline's size gate.
			return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", service.ErrPayloadTooLarge.Error())
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
