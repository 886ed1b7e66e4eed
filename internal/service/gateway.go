// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nahomWM/Quantum-Qr-Code/internal/analytics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/metrics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
	"github.com/nahomWM/Quantum-Qr-Code/internal/objectstore"
	"github.com/nahomWM/Quantum-Qr-Code/internal/resolver"
	"github.com/nahomWM/Quantum-Qr-Code/internal/store"
)

// Service errors.
var (
	ErrCodeNotFound    = errors.New("code not found")
	ErrNoMatch         = errors.New("no configuration matches current context")
	ErrPayloadNotFound = errors.New("payload not found")
	ErrUpstream        = errors.New("object store request failed")
)

// DefaultFetchTimeout bounds a single object store fetch.
const DefaultFetchTimeout = 20 * time.Second

// Content is a resolved payload ready to stream to the scanner.
type Content struct {
	Bytes    []byte
	MimeType string
	Filename string
}

// ContentGateway orchestrates a scan: definition lookup, resolution,
// descriptor lookup and the object store fetch. The analytics update is
// detached and never delays the response.
type ContentGateway struct {
	catalog      *store.Catalog
	objects      objectstore.Client
	recorder     *analytics.Recorder
	logger       *slog.Logger
	metrics      metrics.Recorder
	fetchTimeout time.Duration
}

// NewContentGateway creates a ContentGateway.
func NewContentGateway(
	catalog *store.Catalog,
	objects objectstore.Client,
	recorder *analytics.Recorder,
	logger *slog.Logger,
	metricsRecorder metrics.Recorder,
	fetchTimeout time.Duration,
) *ContentGateway {
	if metricsRecorder == nil {
		metricsRecorder = metrics.NewNoop()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &ContentGateway{
		catalog:      catalog,
		objects:      objects,
		recorder:     recorder,
		logger:       logger.With("component", "service.gateway"),
		metrics:      metricsRecorder,
		fetchTimeout: fetchTimeout,
	}
}

// Serve resolves a scanned code to its payload under the given context.
// A scan of an existing code is recorded regardless of whether a
// configuration matches.
func (g *ContentGateway) Serve(ctx context.Context, codeID string, scanCtx model.ScanContext) (*Content, error) {
	def, err := g.catalog.GetCodeDefinition(ctx, codeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("load code definition %s: %w", codeID, err)
	}

	// Fire-and-forget: the response does not wait for the analytics
	// update, and its failures are absorbed by the recorder.
	g.recorder.RecordAsync(codeID, model.ScanEvent{
		Timestamp:    scanCtx.Now,
		Region:       scanCtx.Region,
		City:         scanCtx.City,
		UserAgentRaw: scanCtx.UserAgentRaw,
	})

	config := resolver.Resolve(def.Configurations, def.Mode, scanCtx)
	if config == nil {
		return nil, ErrNoMatch
	}

	desc, err := g.catalog.GetPayloadDescriptor(ctx, config.PayloadRef)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Definition references a payload that no longer exists.
			g.logger.Error("definition references missing payload",
				"code_id", codeID,
				"payload_ref", config.PayloadRef,
			)
			return nil, ErrPayloadNotFound
		}
		return nil, fmt.Errorf("load payload descriptor %s: %w", config.PayloadRef, err)
	}

	return g.fetch(ctx, desc)
}

// FetchPayload serves a stored payload directly by ref, without any
// context-dependent resolution.
func (g *ContentGateway) FetchPayload(ctx context.Context, ref string) (*Content, error) {
	desc, err := g.catalog.GetPayloadDescriptor(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPayloadNotFound
		}
		return nil, fmt.Errorf("load payload descriptor %s: %w", ref, err)
	}
	return g.fetch(ctx, desc)
}

// fetch pulls the payload bytes from the object store within the fetch
// timeout. The whole payload is buffered so the store connection is not
// held open while the response streams.
func (g *ContentGateway) fetch(ctx context.Context, desc *model.PayloadDescriptor) (*Content, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, g.fetchTimeout)
	defer cancel()

	obj, err := g.objects.Get(fetchCtx, desc.StorageLocator)
	if err != nil {
		g.logger.Error("object store fetch failed",
			"payload_ref", desc.PayloadRef,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read payload body: %v", ErrUpstream, err)
	}

	mimeType := desc.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &Content{
		Bytes:    body,
		MimeType: mimeType,
		Filename: desc.OriginalName,
	}, nil
}
