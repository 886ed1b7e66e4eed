package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nahomWM/Quantum-Qr-Code/internal/metrics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
	"github.com/nahomWM/Quantum-Qr-Code/internal/resolver"
	"github.com/nahomWM/Quantum-Qr-Code/internal/store"
)

// ErrInvalidDefinition marks a malformed code definition request.
var ErrInvalidDefinition = errors.New("invalid code definition")

// DefinitionService manages code definition documents.
type DefinitionService struct {
	catalog *store.Catalog
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewDefinitionService creates a DefinitionService.
func NewDefinitionService(catalog *store.Catalog, logger *slog.Logger, recorder metrics.Recorder) *DefinitionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DefinitionService{
		catalog: catalog,
		logger:  logger.With("component", "service.definition"),
		metrics: recorder,
	}
}

// Create validates and stores a definition. A missing id is generated
// server-side. An existing definition under the same id is overwritten in
// full; there is no partial update.
func (s *DefinitionService) Create(ctx context.Context, def *model.CodeDefinition) (*model.CodeDefinition, error) {
	if def.ID == "" {
		def.ID = uuid.New().String()
	}
	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now().UTC()
	}

	if err := validateDefinition(def); err != nil {
		return nil, err
	}

	if err := s.catalog.PutCodeDefinition(ctx, def); err != nil {
		return nil, fmt.Errorf("store code definition: %w", err)
	}

	s.metrics.IncDefinitionCreated()
	return def, nil
}

// Get loads a definition by id.
func (s *DefinitionService) Get(ctx context.Context, id string) (*model.CodeDefinition, error) {
	def, err := s.catalog.GetCodeDefinition(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return def, nil
}

// List returns all stored definitions.
func (s *DefinitionService) List(ctx context.Context) ([]*model.CodeDefinition, error) {
	return s.catalog.ListCodeDefinitions(ctx)
}

// Delete removes a definition. Payload descriptors and stored bytes the
// definition referenced are left behind; there is no cascade.
func (s *DefinitionService) Delete(ctx context.Context, id string) error {
	if err := s.catalog.DeleteCodeDefinition(ctx, id); err != nil {
		return fmt.Errorf("delete code definition: %w", err)
	}

	s.logger.Info("code definition deleted",
		"code_id", id,
		"note", "referenced payloads are not garbage collected",
	)
	s.metrics.IncDefinitionDeleted()
	return nil
}

// validateDefinition checks the structural invariants of a definition:
// a known mode, at least one configuration, and per-mode fields that the
// resolver can act on.
func validateDefinition(def *model.CodeDefinition) error {
	if !def.Mode.IsValid() {
		return fmt.Errorf("%w: mode must be %q or %q", ErrInvalidDefinition, model.ModeTime, model.ModeLocation)
	}
	if len(def.Configurations) == 0 {
		return fmt.Errorf("%w: at least one configuration is required", ErrInvalidDefinition)
	}

	for i, config := range def.Configurations {
		if config.PayloadRef == "" {
			return fmt.Errorf("%w: configuration %d is missing payloadRef", ErrInvalidDefinition, i)
		}

		switch def.Mode {
		case model.ModeTime:
			if !resolver.ValidClock(config.Start) || !resolver.ValidClock(config.End) {
				return fmt.Errorf("%w: configuration %d requires HH:MM start and end", ErrInvalidDefinition, i)
			}
		case model.ModeLocation:
			if config.RegionCode == "" {
				return fmt.Errorf("%w: configuration %d is missing regionCode", ErrInvalidDefinition, i)
			}
		}
	}

	return nil
}
