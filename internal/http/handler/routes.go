package handler

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prdapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// maxUploadSize bounds how much of the file part is buffered; one extra byte is read
// so the pipeline can tell an oversize file apart from one exactly at the limit.
func RegisterRoutes(app *fiber.App, db *sql.DB, uploadSvc service.UploadService, gatherer prometheus.Gatherer, maxUploadSize int64) {
	app.Get("/", Root())

	// Dependency health: checks DB connectivity only
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", Liveness())

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	app.Post("/upload-prd", UploadPRD(uploadSvc, maxUploadSize))
}

// Root reports that the service is up.
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Backend is working!"})
	}
}

// HealthCheck pings the metadata database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// Liveness is a dependency-free liveness check.
func Liveness() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadPRD godoc
//
// The file type is gated on the part's declared Content-Type. A part sent without
// one is not rejected outright: its type is sniffed from the bytes with mimetype,
// which is more lenient than declared-type-only gating. Parts whose declared type
// is outside the allow-list still fail as unsupported.
//
// @Summary Upload a PRD document
// @Description Accepts a pdf, txt, docx or a zip holding exactly one of those, stores it and records its metadata.
// @Tags prds
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document or zip archive"
// @Param title formData string true "Document title"
// @Param user_id formData string true "Owner identifier"
// @Success 200 {object} service.UploadResult
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /upload-prd [post]
func UploadPRD(uploadSvc service.UploadService, maxUploadSize int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		title := c.FormValue("title")
		if title == "" {
			return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
		}
		userID := c.FormValue("user_id")
		if userID == "" {
			return writeError(c, fiber.StatusBadRequest, "USER_ID_REQUIRED", "user_id is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		payload, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		res, err := uploadSvc.Submit(c.UserContext(), service.UploadRequest{
			Payload:     payload,
			ContentType: declaredContentType(fh.Header.Get("Content-Type"), payload),
			Title:       title,
			UserID:      userID,
		})
		if err != nil {
			return writeUploadError(c, err)
		}
		return c.JSON(res)
	}
}

// declaredContentType prefers the part header and only sniffs when the client sent none.
// Sniffing lets a headerless pdf, docx or zip through; a declared type is never overridden.
func declaredContentType(header string, payload []byte) string {
	if header != "" {
		return header
	}
	mt, _, _ := strings.Cut(mimetype.Detect(payload).String(), ";")
	return strings.TrimSpace(mt)
}
