package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
)

// Catalog is the typed access layer over the raw document store. It owns
// JSON encoding and the key scheme so callers never touch raw keys.
type Catalog struct {
	store Store
}

// NewCatalog wraps a Store.
func NewCatalog(s Store) *Catalog {
	return &Catalog{store: s}
}

// Store returns the underlying document store.
func (c *Catalog) Store() Store {
	return c.store
}

// GetCodeDefinition loads a code definition by id.
func (c *Catalog) GetCodeDefinition(ctx context.Context, id string) (*model.CodeDefinition, error) {
	doc, err := c.store.Get(ctx, CodeKey(id))
	if err != nil {
		return nil, err
	}

	var def model.CodeDefinition
	if err := json.Unmarshal(doc, &def); err != nil {
		return nil, fmt.Errorf("decode code definition %s: %w", id, err)
	}
	if def.ID == "" {
		def.ID = id
	}
	return &def, nil
}

// PutCodeDefinition stores a code definition, overwriting in full.
func (c *Catalog) PutCodeDefinition(ctx context.Context, def *model.CodeDefinition) error {
	doc, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode code definition %s: %w", def.ID, err)
	}
	return c.store.Put(ctx, CodeKey(def.ID), doc)
}

// DeleteCodeDefinition removes a code definition. Payload descriptors
// referenced by the definition are left behind.
func (c *Catalog) DeleteCodeDefinition(ctx context.Context, id string) error {
	return c.store.Delete(ctx, CodeKey(id))
}

// ListCodeDefinitions returns every stored code definition.
func (c *Catalog) ListCodeDefinitions(ctx context.Context) ([]*model.CodeDefinition, error) {
	keys, err := c.store.List(ctx, codeKeyPrefix)
	if err != nil {
		return nil, err
	}

	defs := make([]*model.CodeDefinition, 0, len(keys))
	for _, key := range keys {
		id := key[len(codeKeyPrefix):]
		def, err := c.GetCodeDefinition(ctx, id)
		if err != nil {
			// A key can disappear between List and Get.
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// GetPayloadDescriptor loads a payload descriptor by ref.
func (c *Catalog) GetPayloadDescriptor(ctx context.Context, ref string) (*model.PayloadDescriptor, error) {
	doc, err := c.store.Get(ctx, PayloadKey(ref))
	if err != nil {
		return nil, err
	}

	var desc model.PayloadDescriptor
	if err := json.Unmarshal(doc, &desc); err != nil {
		return nil, fmt.Errorf("decode payload descriptor %s: %w", ref, err)
	}
	return &desc, nil
}

// PutPayloadDescriptor stores a payload descriptor.
func (c *Catalog) PutPayloadDescriptor(ctx context.Context, desc *model.PayloadDescriptor) error {
	doc, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("encode payload descriptor %s: %w", desc.PayloadRef, err)
	}
	return c.store.Put(ctx, PayloadKey(desc.PayloadRef), doc)
}

// GetAnalyticsSummary loads the analytics summary for a code, or
// ErrNotFound when no scan has been recorded yet.
func (c *Catalog) GetAnalyticsSummary(ctx context.Context, id string) (*model.AnalyticsSummary, error) {
	doc, err := c.store.Get(ctx, AnalyticsKey(id))
	if err != nil {
		return nil, err
	}

	var summary model.AnalyticsSummary
	if err := json.Unmarshal(doc, &summary); err != nil {
		return nil, fmt.Errorf("decode analytics summary %s: %w", id, err)
	}
	summary.EnsureBuckets()
	return &summary, nil
}

// PutAnalyticsSummary stores the full analytics summary for a code.
func (c *Catalog) PutAnalyticsSummary(ctx context.Context, id string, summary *model.AnalyticsSummary) error {
	doc, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode analytics summary %s: %w", id, err)
	}
	return c.store.Put(ctx, AnalyticsKey(id), doc)
}
