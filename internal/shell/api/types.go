package api

import (
	"github.com/artpar/hwdb/internal/core/domain"
	"github.com/artpar/hwdb/internal/shell/store"
)

// =============================================================================
// Response Types
// =============================================================================

// DeploymentResponse is a deployment with its rendered one-line forms.
type DeploymentResponse struct {
	domain.Deployment
	Display         string `json:"display"`
	CustomerDisplay string `json:"customerDisplay"`
}

// SystemResponse is a system with its rendered one-line form.
type SystemResponse struct {
	domain.System
	Display string `json:"display"`
}

// ListMeta describes how a listing was produced.
type ListMeta struct {
	Total      int    `json:"total"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
	Query      string `json:"query,omitempty"`
	Sort       string `json:"sort,omitempty"`
	Descending bool   `json:"descending"`
}

// ListDeploymentsResponse is the response for listing deployments.
type ListDeploymentsResponse struct {
	Deployments []DeploymentResponse `json:"deployments"`
	ListMeta
}

// ListSystemsResponse is the response for listing systems.
type ListSystemsResponse struct {
	Systems []SystemResponse `json:"systems"`
	ListMeta
}

// ListImportsResponse is the response for listing snapshot imports.
type ListImportsResponse struct {
	Imports []store.Import `json:"imports"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
