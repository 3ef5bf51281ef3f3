package envvar

const (
	// DialectTTSEnv is the environment variable used to determine the environment
	DialectTTSEnv = "DIALECT_TTS_ENV"

	// DialectTTSServerHTTPPort is the environment variable used to determine the HTTP port
	DialectTTSServerHTTPPort = "DIALECT_TTS_SERVER_HTTP_PORT"

	// DialectTTSModelsPath is the environment variable used to override the models directory
	DialectTTSModelsPath = "DIALECT_TTS_MODELS_PATH"

	// DialectTTSDevice is the environment variable used to force the compute device
	DialectTTSDevice = "DIALECT_TTS_DEVICE"
)
