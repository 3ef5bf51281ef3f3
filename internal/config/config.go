package config

// Config holds the main configuration for the application.
type Config struct {
	Version    string                 `json:"version"              yaml:"version"`
	Server     ServerConfig           `json:"server,omitempty"     yaml:"server,omitempty"`
	Storage    StorageConfig          `json:"storage,omitempty"    yaml:"storage,omitempty"`
	Runner     RunnerConfig           `json:"runner,omitempty"     yaml:"runner,omitempty"`
	Generation GenerationConfig       `json:"generation,omitempty" yaml:"generation,omitempty"`
	Models     map[string]ModelConfig `json:"models,omitempty"     yaml:"models,omitempty"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	HTTPPort int `json:"http_port,omitempty" yaml:"http_port,omitempty"`
}

// StorageConfig holds the filesystem layout consumed and produced by the service.
type StorageConfig struct {
	ModelsDir  string `json:"models_dir,omitempty"  yaml:"models_dir,omitempty"`
	OutputDir  string `json:"output_dir,omitempty"  yaml:"output_dir,omitempty"`
	UploadsDir string `json:"uploads_dir,omitempty" yaml:"uploads_dir,omitempty"`
	SamplesDir string `json:"samples_dir,omitempty" yaml:"samples_dir,omitempty"`
}

// RunnerConfig holds configuration for the model runner process.
type RunnerConfig struct {
	BinPath                string `json:"bin_path,omitempty"                 yaml:"bin_path,omitempty"`
	StartupTimeoutSeconds  int    `json:"startup_timeout_seconds,omitempty"  yaml:"startup_timeout_seconds,omitempty"`
	GenerateTimeoutSeconds int    `json:"generate_timeout_seconds,omitempty" yaml:"generate_timeout_seconds,omitempty"`
	Preload                bool   `json:"preload,omitempty"                  yaml:"preload,omitempty"`
}

// GenerationConfig holds the default sampling parameters. Per-request values
// override these; they are forwarded verbatim to the model.
type GenerationConfig struct {
	Temperature       float64 `json:"temperature,omitempty"        yaml:"temperature,omitempty"`
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty" yaml:"repetition_penalty,omitempty"`
	TopP              float64 `json:"top_p,omitempty"              yaml:"top_p,omitempty"`
	MinP              float64 `json:"min_p,omitempty"              yaml:"min_p,omitempty"`
	CFGWeight         float64 `json:"cfg_weight,omitempty"         yaml:"cfg_weight,omitempty"`
}

// ModelConfig holds the remote source for one dialect's artifact set, keyed
// by dialect name in Config.Models. Used only by provisioning; the registry
// itself loads from the local models directory.
type ModelConfig struct {
	Repo     string `json:"repo"               yaml:"repo"`
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty"`
}

// Normalize fills unset fields with defaults. Returns the receiver for chaining.
func (c *Config) Normalize() *Config {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = DefaultHTTPPort()
	}
	if c.Storage.ModelsDir == "" {
		c.Storage.ModelsDir = DefaultModelsPath()
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "generated_audio"
	}
	if c.Storage.UploadsDir == "" {
		c.Storage.UploadsDir = "temp_reference_audio"
	}
	if c.Storage.SamplesDir == "" {
		c.Storage.SamplesDir = "training_samples"
	}
	if c.Runner.BinPath == "" {
		c.Runner.BinPath = "chatterbox-runner"
	}
	if c.Runner.StartupTimeoutSeconds == 0 {
		c.Runner.StartupTimeoutSeconds = 120
	}
	if c.Runner.GenerateTimeoutSeconds == 0 {
		c.Runner.GenerateTimeoutSeconds = 300
	}
	c.Generation.Normalize()
	return c
}

// Normalize fills unset sampling parameters with the model defaults.
func (g *GenerationConfig) Normalize() {
	if g.Temperature == 0 {
		g.Temperature = 0.8
	}
	if g.RepetitionPenalty == 0 {
		g.RepetitionPenalty = 2.0
	}
	if g.TopP == 0 {
		g.TopP = 1.0
	}
	if g.MinP == 0 {
		g.MinP = 0.05
	}
	if g.CFGWeight == 0 {
		g.CFGWeight = 0.5
	}
}
