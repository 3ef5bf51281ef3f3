package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaPath = "../../schemas/dialect-tts.v1.schema.json"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNormalize_FillsDefaults(t *testing.T) {
	c := (&Config{Version: "1"}).Normalize()

	assert.Equal(t, 8000, c.Server.HTTPPort)
	assert.Equal(t, "generated_audio", c.Storage.OutputDir)
	assert.Equal(t, "temp_reference_audio", c.Storage.UploadsDir)
	assert.Equal(t, "training_samples", c.Storage.SamplesDir)
	assert.NotEmpty(t, c.Storage.ModelsDir)
	assert.Equal(t, "chatterbox-runner", c.Runner.BinPath)
	assert.Equal(t, 120, c.Runner.StartupTimeoutSeconds)
	assert.Equal(t, 300, c.Runner.GenerateTimeoutSeconds)

	assert.Equal(t, 0.8, c.Generation.Temperature)
	assert.Equal(t, 2.0, c.Generation.RepetitionPenalty)
	assert.Equal(t, 1.0, c.Generation.TopP)
	assert.Equal(t, 0.05, c.Generation.MinP)
	assert.Equal(t, 0.5, c.Generation.CFGWeight)
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	c := (&Config{
		Version:    "1",
		Server:     ServerConfig{HTTPPort: 9001},
		Generation: GenerationConfig{Temperature: 0.3},
	}).Normalize()

	assert.Equal(t, 9001, c.Server.HTTPPort)
	assert.Equal(t, 0.3, c.Generation.Temperature)
	// Untouched sibling fields still get defaults.
	assert.Equal(t, 2.0, c.Generation.RepetitionPenalty)
}

func TestLoadAndValidate_FullConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1"
server:
  http_port: 8080
storage:
  models_dir: /srv/models
runner:
  bin_path: /usr/local/bin/chatterbox-runner
  preload: true
generation:
  temperature: 0.6
models:
  egyptian:
    repo: genarabia/tts-egyptian
  ksa:
    repo: genarabia/tts-ksa
    revision: v2
`)

	c, err := LoadAndValidate(path, schemaPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.HTTPPort)
	assert.Equal(t, "/srv/models", c.Storage.ModelsDir)
	assert.True(t, c.Runner.Preload)
	assert.Equal(t, 0.6, c.Generation.Temperature)
	assert.Equal(t, 1.0, c.Generation.TopP)

	require.Contains(t, c.Models, "ksa")
	assert.Equal(t, "v2", c.Models["ksa"].Revision)
}

func TestLoadAndValidate_MinimalConfigGetsDefaults(t *testing.T) {
	path := writeConfig(t, `version: "1"`)

	c, err := LoadAndValidate(path, schemaPath)
	require.NoError(t, err)
	assert.Equal(t, 8000, c.Server.HTTPPort)
}

func TestLoadAndValidate_RejectsUnknownDialectKey(t *testing.T) {
	path := writeConfig(t, `
version: "1"
models:
  lebanese:
    repo: genarabia/tts-lebanese
`)

	_, err := LoadAndValidate(path, schemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadAndValidate_RejectsMissingVersion(t *testing.T) {
	path := writeConfig(t, `server: {http_port: 8080}`)

	_, err := LoadAndValidate(path, schemaPath)
	require.Error(t, err)
}

func TestLoadAndValidate_RejectsOutOfRangePort(t *testing.T) {
	path := writeConfig(t, `
version: "1"
server:
  http_port: 70000
`)

	_, err := LoadAndValidate(path, schemaPath)
	require.Error(t, err)
}

func TestLoadAndValidate_RejectsInvalidYAML(t *testing.T) {
	path := writeConfig(t, "version: [unclosed")

	_, err := LoadAndValidate(path, schemaPath)
	require.Error(t, err)
}

func TestLoadAndValidate_MissingFile(t *testing.T) {
	_, err := LoadAndValidate(filepath.Join(t.TempDir(), "absent.yaml"), schemaPath)
	require.Error(t, err)
}
