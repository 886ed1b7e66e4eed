// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateDefinitionRequest represents the request body for creating a
// code definition. ID is optional; the server generates a UUID when
// it is absent.
type CreateDefinitionRequest struct {
	ID             string                `json:"id,omitempty"`
	Mode           model.Mode            `json:"mode"`
	Configurations []model.Configuration `json:"configurations"`
}

// ToCodeDefinition converts the request into a model definition.
func (r *CreateDefinitionRequest) ToCodeDefinition() *model.CodeDefinition {
	return &model.CodeDefinition{
		ID:             r.ID,
		Mode:           r.Mode,
		Configurations: r.Configurations,
	}
}

// DefinitionListResponse wraps the full definition list.
type DefinitionListResponse struct {
	Data []*model.CodeDefinition `json:"data"`
}

// AnalyticsBatchRequest represents the request body for bulk summary
// retrieval.
type AnalyticsBatchRequest struct {
	IDs []string `json:"ids"`
}

// AnalyticsBatchEntry pairs a code id with its summary. Codes that
// have never been scanned carry a zero-valued summary.
type AnalyticsBatchEntry struct {
	ID string `json:"id"`
	*model.AnalyticsSummary
}
