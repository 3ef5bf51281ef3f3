package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/genarabia-ai/dialect-tts/internal/audio"
	"github.com/genarabia-ai/dialect-tts/internal/backend/chatterbox"
	"github.com/genarabia-ai/dialect-tts/internal/config"
	"github.com/genarabia-ai/dialect-tts/internal/device"
	"github.com/genarabia-ai/dialect-tts/internal/env"
	"github.com/genarabia-ai/dialect-tts/internal/envvar"
	"github.com/genarabia-ai/dialect-tts/internal/logger"
	"github.com/genarabia-ai/dialect-tts/internal/model"
	"github.com/genarabia-ai/dialect-tts/internal/provision"
	"github.com/genarabia-ai/dialect-tts/internal/samples"
	httpserver "github.com/genarabia-ai/dialect-tts/internal/server/http"
	"github.com/genarabia-ai/dialect-tts/internal/service"
	"github.com/genarabia-ai/dialect-tts/internal/xfs"
)

func main() {
	var (
		flagConfigPath = flag.String("config", path.Join(config.DefaultConfigPath(), "config.yaml"), "Path to config file")
		flagSchemaPath = flag.String("schema", path.Join(config.DefaultConfigPath(), "dialect-tts.v1.schema.json"), "Path to schema file")
		flagDownload   = flag.Bool("download", false, "Download configured dialect models from Hugging Face and exit")
	)
	flag.Parse()

	environment := env.FromEnv()

	slog.SetDefault(
		logger.New(environment,
			logger.WithLogToFile(true),
			logger.WithLogFile("logs/dialect-tts.log"),
		),
	)

	watcher, err := config.NewWatcher(*flagConfigPath, *flagSchemaPath, func(cfg *config.Config, err error) {
		if err != nil {
			slog.Error("Failed to reload config", "error", err)
			return
		}
		slog.Info("Config reloaded; model and server settings apply on restart")
	})
	if err != nil {
		slog.Error("Failed to create config watcher", "error", err)
		os.Exit(1)
	}
	defer watcher.Close()

	cfg := watcher.Snapshot()
	modelsDir := resolveModelsDir(cfg)

	if *flagDownload {
		if err := provision.Download(context.Background(), cfg, modelsDir); err != nil {
			slog.Error("Provisioning finished with errors", "error", err)
			os.Exit(1)
		}
		return
	}

	dev := device.NewSelector().Select()
	slog.Info("Starting dialect TTS service",
		"config", *flagConfigPath,
		"models_dir", modelsDir,
		"device", dev)

	be, err := chatterbox.NewBackend(
		cfg.Runner.BinPath,
		time.Duration(cfg.Runner.StartupTimeoutSeconds)*time.Second,
		time.Duration(cfg.Runner.GenerateTimeoutSeconds)*time.Second,
	)
	if err != nil {
		slog.Error("Failed to create chatterbox backend", "error", err)
		os.Exit(1)
	}

	registry := model.NewRegistry(be, modelsDir, dev)
	defer registry.Evict()

	if cfg.Runner.Preload {
		slog.Info("Preloading dialect models")
		registry.LoadAll(context.Background())
		slog.Info("Preload finished", "loaded", registry.Loaded())
	} else {
		slog.Info("Lazy loading enabled, models load on first request")
	}

	catalog, err := samples.Load(xfs.ExpandTilde(cfg.Storage.SamplesDir))
	if err != nil {
		slog.Warn("Samples catalog unavailable", "error", err)
		catalog = nil
	}

	svc := service.NewTTS(registry, audio.NewFinalizer(xfs.ExpandTilde(cfg.Storage.OutputDir)))

	if p := os.Getenv(envvar.DialectTTSServerHTTPPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			slog.Error("Invalid HTTP port override", "value", p)
			os.Exit(1)
		}
		cfg.Server.HTTPPort = port
	}

	srv := httpserver.New(cfg, svc, registry, catalog)
	slog.Info("HTTP server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("HTTP server stopped", "error", err)
		os.Exit(1)
	}
}

// resolveModelsDir returns the models directory.
// Precedence:
// 1. DIALECT_TTS_MODELS_PATH environment variable.
// 2. ModelsDir field in the config.
// 3. Default models path.
func resolveModelsDir(cfg *config.Config) string {
	if p := os.Getenv(envvar.DialectTTSModelsPath); p != "" {
		return xfs.ExpandTilde(p)
	}
	if cfg.Storage.ModelsDir != "" {
		return xfs.ExpandTilde(cfg.Storage.ModelsDir)
	}
	return xfs.ExpandTilde(config.DefaultModelsPath())
}
