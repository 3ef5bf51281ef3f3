package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/genarabia-ai/dialect-tts/internal/config"
	"github.com/genarabia-ai/dialect-tts/internal/dialect"
	"github.com/genarabia-ai/dialect-tts/internal/xfs"
)

const (
	defaultRetryDelay = 2 * time.Second
	defaultMaxRetries = 3
	defaultTimeout    = 15 * time.Minute
	markerFilename    = ".dialect-tts-downloaded"
)

// Download fetches every configured dialect's artifact set from Hugging Face
// into modelsDir/<dialect> using the `hf` CLI. Dialects without a configured
// source are skipped; one failed dialect does not abort the rest.
func Download(ctx context.Context, cfg *config.Config, modelsDir string) error {
	if err := xfs.EnsureDir(modelsDir); err != nil {
		return fmt.Errorf("failed to prepare models directory %s: %w", modelsDir, err)
	}

	var lastErr error
	for _, d := range dialect.All() {
		mc, ok := cfg.Models[d.String()]
		if !ok {
			slog.Warn("No model source configured for dialect, skipping", "dialect", d)
			continue
		}

		if err := downloadOne(ctx, d, &mc, modelsDir); err != nil {
			slog.Error("Failed to download dialect model", "dialect", d, "repo", mc.Repo, "error", err)
			lastErr = err
		}
	}

	return lastErr
}

func downloadOne(ctx context.Context, d dialect.Dialect, mc *config.ModelConfig, modelsDir string) error {
	repo := strings.TrimSpace(mc.Repo)
	if repo == "" {
		return fmt.Errorf("invalid repo name for dialect %s", d)
	}

	targetDir := filepath.Join(modelsDir, d.String())
	markerPath := filepath.Join(targetDir, markerFilename)
	markerContent := fmt.Sprintf("repo: %s\nrevision: %s\n", repo, mc.Revision)

	if content, err := os.ReadFile(markerPath); err == nil && string(content) == markerContent {
		slog.Info("Model already downloaded and up-to-date (marker match), skipping", "dialect", d, "repo", repo)
		return nil
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	args := []string{"download", repo, "--local-dir", targetDir}
	if mc.Revision != "" {
		args = append(args, "--revision", mc.Revision)
	}

	var lastErr error
	for attempt := 0; attempt < defaultMaxRetries; attempt++ {
		if attempt > 0 {
			slog.Info("Retrying download", "dialect", d, "repo", repo, "attempt", attempt+1, "last_error", lastErr)
			time.Sleep(defaultRetryDelay)
		} else {
			slog.Info("Downloading dialect model", "dialect", d, "repo", repo, "path", targetDir)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		cmd := exec.CommandContext(attemptCtx, "hf", args...)
		output, err := cmd.CombinedOutput()
		cancel()

		if err == nil {
			if err := os.WriteFile(markerPath, []byte(markerContent), 0o644); err != nil {
				slog.Warn("Failed to write download marker", "path", markerPath, "error", err)
			}
			slog.Info("Dialect model downloaded", "dialect", d, "repo", repo, "attempt", attempt+1)
			return nil
		}

		lastErr = err
		slog.Error("Download attempt failed", "dialect", d, "repo", repo, "attempt", attempt+1, "error", err, "output", string(output))

		if attemptCtx.Err() == context.Canceled {
			return fmt.Errorf("download canceled: %w", err)
		}
	}

	return lastErr
}
