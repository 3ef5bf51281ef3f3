package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/genarabia-ai/dialect-tts/internal/config"
	"github.com/genarabia-ai/dialect-tts/internal/model"
	"github.com/genarabia-ai/dialect-tts/internal/samples"
	"github.com/genarabia-ai/dialect-tts/internal/service"
)

// New builds the HTTP server with every API handler registered.
func New(cfg *config.Config, svc *service.TTS, registry *model.Registry, catalog *samples.Catalog) *http.Server {
	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("ChatterBox Multi-Dialect TTS API", "1.0.0"))

	NewTTSHandler(api, svc, cfg.Storage.UploadsDir, cfg.Generation)
	NewSamplesHandler(api, svc, catalog, cfg.Generation)
	NewHealthHandler(api, registry)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
