package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/docker/go-units"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"prdapi/internal/archive"
	"prdapi/internal/metrics"
	"prdapi/internal/model"
	"prdapi/internal/repository"
	"prdapi/internal/storage"
)

// StatusSuccess is the only status a successful upload reports.
const StatusSuccess = "success"

const extZip = "zip"

// allowedTypes maps each accepted declared content type to the stored extension.
var allowedTypes = map[string]string{
	"application/pdf": "pdf",
	"text/plain":      "txt",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/zip": extZip,
}

// ExtensionFor returns the extension an allowed content type is stored with.
func ExtensionFor(contentType string) (string, bool) {
	ext, ok := allowedTypes[contentType]
	return ext, ok
}

// UploadRequest is one caller submission. Payload is fully buffered.
type UploadRequest struct {
	Payload     []byte
	ContentType string
	Title       string
	UserID      string
}

// UploadResult is returned for a stored upload.
type UploadResult struct {
	Status  string `json:"status"`
	FileURL string `json:"file_url"`
}

// Config holds the pipeline's limits and public URL parts.
type Config struct {
	// StorageRoot is the base URL public object links are built from.
	StorageRoot string
	Bucket      string
	// MaxUploadSize caps the raw payload.
	MaxUploadSize int64
	// MaxExtractedSize caps a decompressed archive entry; <= 0 disables the cap.
	MaxExtractedSize int64
}

// UploadService defines the PRD upload use case.
type UploadService interface {
	// Submit validates the payload, extracts a zipped document if needed, stores the bytes
	// and records a metadata row. If the row cannot be written the stored object is deleted.
	Submit(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

// Option configures an uploadService.
type Option func(*uploadService)

// WithLogger sets the logger used for pipeline events.
func WithLogger(l *log.Logger) Option {
	return func(s *uploadService) { s.log = l }
}

// WithMetrics sets the collectors outcomes are recorded on.
func WithMetrics(m *metrics.UploadMetrics) Option {
	return func(s *uploadService) { s.metrics = m }
}

type uploadService struct {
	store   storage.Storage
	repo    repository.PRDRepository
	cfg     Config
	log     *log.Logger
	metrics *metrics.UploadMetrics
	tracer  trace.Tracer
	newID   func() string
}

// NewUploadService constructs the upload pipeline around explicit collaborators.
func NewUploadService(store storage.Storage, repo repository.PRDRepository, cfg Config, opts ...Option) UploadService {
	s := &uploadService{
		store:  store,
		repo:   repo,
		cfg:    cfg,
		log:    log.Default(),
		tracer: otel.Tracer("prdapi/internal/service"),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "upload")
	return s
}

func (s *uploadService) Submit(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	ctx, span := s.tracer.Start(ctx, "upload.submit", trace.WithAttributes(
		attribute.String("upload.content_type", req.ContentType),
		attribute.Int("upload.size", len(req.Payload)),
	))
	defer span.End()

	start := time.Now()
	res, size, err := s.submit(ctx, req)

	outcome := outcomeOf(err)
	s.metrics.Observe(outcome, size)

	fields := []any{
		"user_id", req.UserID,
		"outcome", outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	switch {
	case err == nil:
		span.SetAttributes(attribute.String("upload.file_url", res.FileURL))
		s.log.Info("upload_stored", append(fields, "file_url", res.FileURL, "size", size)...)
	case IsClientError(err):
		span.SetStatus(codes.Error, "rejected")
		s.log.Warn("upload_rejected", append(fields, "error_message", err.Error())...)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error("upload_failed", append(fields, "error_message", err.Error())...)
	}

	return res, err
}

// submit runs the gates in order. The returned size is the number of bytes stored.
func (s *uploadService) submit(ctx context.Context, req UploadRequest) (*UploadResult, int, error) {
	if int64(len(req.Payload)) > s.cfg.MaxUploadSize {
		return nil, 0, fmt.Errorf("%w: limit is %s", ErrPayloadTooLarge, units.BytesSize(float64(s.cfg.MaxUploadSize)))
	}

	ext, ok := ExtensionFor(req.ContentType)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedType, req.ContentType)
	}

	data := req.Payload
	if ext == extZip {
		entry, err := archive.ExtractSingle(req.Payload, s.cfg.MaxExtractedSize)
		if err != nil {
			if errors.Is(err, archive.ErrInvalidContents) {
				return nil, 0, fmt.Errorf("%w: %w", ErrInvalidArchiveContents, err)
			}
			return nil, 0, fmt.Errorf("%w: %w", ErrArchiveExtractionFailed, err)
		}
		data, ext = entry.Data, entry.Ext
	}

	key := fmt.Sprintf("%s/%s.%s", req.UserID, s.newID(), ext)

	if _, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: storage.ContentTypeBinary,
	}); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}

	fileURL := s.publicURL(key)
	if _, err := s.repo.Create(ctx, &model.PRD{
		ID:      s.newID(),
		UserID:  req.UserID,
		Title:   req.Title,
		FileURL: fileURL,
	}); err != nil {
		// Compensate even if the caller has gone away.
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			return nil, 0, fmt.Errorf("%w: %w: %w; cleanup of %s failed: %w",
				ErrPartiallyFailed, ErrMetadataInsertFailed, err, key, delErr)
		}
		return nil, 0, fmt.Errorf("%w: %w", ErrMetadataInsertFailed, err)
	}

	return &UploadResult{Status: StatusSuccess, FileURL: fileURL}, len(data), nil
}

// publicURL follows the Supabase public object layout.
func (s *uploadService) publicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		strings.TrimRight(s.cfg.StorageRoot, "/"), s.cfg.Bucket, key)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrPartiallyFailed):
		return metrics.OutcomePartiallyFailed
	case errors.Is(err, ErrMetadataInsertFailed):
		return metrics.OutcomeMetadataFailed
	case errors.Is(err, ErrStorageWriteFailed):
		return metrics.OutcomeStorageFailed
	default:
		return metrics.OutcomeRejected
	}
}
