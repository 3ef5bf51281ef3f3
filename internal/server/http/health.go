package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/genarabia-ai/dialect-tts/internal/dialect"
	"github.com/genarabia-ai/dialect-tts/internal/model"
)

type (
	// HealthResponseDTO reports service health.
	HealthResponseDTO struct {
		Status       string   `json:"status"`
		ModelsLoaded []string `json:"models_loaded"`
		Device       string   `json:"device"`
	}

	// HealthOutput is the huma output for the health operations.
	HealthOutput struct {
		Body HealthResponseDTO
	}

	// DialectsResponseDTO lists the supported dialects.
	DialectsResponseDTO struct {
		Dialects     []string          `json:"dialects"`
		DisplayNames map[string]string `json:"display_names"`
	}

	// DialectsOutput is the huma output for the Dialects operation.
	DialectsOutput struct {
		Body DialectsResponseDTO
	}
)

// HealthHandler reports loaded models and the selected compute device.
type HealthHandler struct {
	registry *model.Registry
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(api huma.API, registry *model.Registry) *HealthHandler {
	h := &HealthHandler{registry: registry}

	huma.Register(api, huma.Operation{
		OperationID:   "health",
		Method:        http.MethodGet,
		Path:          "/health",
		Summary:       "Health check",
		Tags:          []string{"health"},
		DefaultStatus: http.StatusOK,
	}, h.handleHealth)

	huma.Register(api, huma.Operation{
		OperationID:   "list-dialects",
		Method:        http.MethodGet,
		Path:          "/api/dialects",
		Summary:       "List available dialects",
		Tags:          []string{"health"},
		DefaultStatus: http.StatusOK,
	}, h.handleDialects)

	return h
}

// handleHealth handles the health operation.
func (h *HealthHandler) handleHealth(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	loaded := h.registry.Loaded()
	names := make([]string, len(loaded))
	for i, d := range loaded {
		names[i] = d.String()
	}

	return &HealthOutput{
		Body: HealthResponseDTO{
			Status:       "healthy",
			ModelsLoaded: names,
			Device:       string(h.registry.Device()),
		},
	}, nil
}

// handleDialects handles the list-dialects operation.
func (h *HealthHandler) handleDialects(_ context.Context, _ *struct{}) (*DialectsOutput, error) {
	all := dialect.All()
	names := make([]string, len(all))
	display := make(map[string]string, len(all))
	for i, d := range all {
		names[i] = d.String()
		display[d.String()] = d.DisplayName()
	}

	return &DialectsOutput{
		Body: DialectsResponseDTO{
			Dialects:     names,
			DisplayNames: display,
		},
	}, nil
}
