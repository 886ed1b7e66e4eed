package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nahomWM/Quantum-Qr-Code/internal/metrics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
	"github.com/nahomWM/Quantum-Qr-Code/internal/objectstore"
	"github.com/nahomWM/Quantum-Qr-Code/internal/store"
)

// ErrInvalidUpload marks a malformed upload request.
var ErrInvalidUpload = errors.New("invalid upload")

// PayloadService stores uploaded payloads and their descriptors.
type PayloadService struct {
	catalog *store.Catalog
	objects objectstore.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPayloadService creates a PayloadService.
func NewPayloadService(catalog *store.Catalog, objects objectstore.Client, logger *slog.Logger, recorder metrics.Recorder) *PayloadService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PayloadService{
		catalog: catalog,
		objects: objects,
		logger:  logger.With("component", "service.payload"),
		metrics: recorder,
	}
}

// Upload pushes the payload bytes to the object store and persists a
// descriptor. The returned ref is what configurations point at.
func (s *PayloadService) Upload(ctx context.Context, originalName, mimeType string, data []byte) (*model.PayloadDescriptor, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidUpload)
	}
	if originalName == "" {
		originalName = "upload"
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	// ULIDs sort by creation time, which keeps bucket listings ordered.
	ref := ulid.Make().String()
	storageName := ref + "-" + sanitizeName(originalName)

	locator, err := s.objects.Put(ctx, storageName, mimeType, data)
	if err != nil {
		if errors.Is(err, objectstore.ErrUpstream) {
			return nil, fmt.Errorf("%w: store payload bytes: %v", ErrUpstream, err)
		}
		return nil, fmt.Errorf("store payload bytes: %w", err)
	}

	desc := &model.PayloadDescriptor{
		PayloadRef:     ref,
		OriginalName:   originalName,
		MimeType:       mimeType,
		ByteSize:       int64(len(data)),
		StorageLocator: locator,
		UploadedAt:     time.Now().UTC(),
	}

	if err := s.catalog.PutPayloadDescriptor(ctx, desc); err != nil {
		// Bytes are already in the object store; the descriptor is the
		// source of truth, so a failed write orphans them.
		return nil, fmt.Errorf("store payload descriptor: %w", err)
	}

	s.logger.Info("payload uploaded",
		"payload_ref", ref,
		"original_name", originalName,
		"byte_size", len(data),
	)
	s.metrics.IncPayloadUploaded()

	return desc, nil
}

// sanitizeName strips path separators and whitespace from an uploaded
// filename before it becomes part of an object name.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_")
	return replacer.Replace(name)
}
