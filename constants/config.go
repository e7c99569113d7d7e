package constants

// Configuration Files
const (
	ConfigFileName   = "functions.config.json"
	ConfigSchemaFile = "functions.config.schema.json"
)

// Function Names
const (
	FunctionPredict = "predict"
	FunctionTest    = "test"
)

// Environment Variables
const (
	EnvDebug           = "CVDFN_DEBUG"
	EnvConfigPath      = "CVDFN_CONFIG"
	EnvTracingExporter = "CVDFN_TRACING_EXPORTER"
	EnvModelDir        = "MODEL_DIR"
	EnvBackendURL      = "BACKEND_URL"
	EnvBackendDriver   = "BACKEND_DRIVER"
	EnvLambdaTaskRoot  = "LAMBDA_TASK_ROOT"
)

// Backend Drivers
const (
	BackendDriverProxy = "proxy"
)

// Model Source Drivers
const (
	SourceDriverFilesystem = "filesystem"
	SourceDriverS3         = "s3"
)

// Tracing Exporters
const (
	TracingExporterNone   = "none"
	TracingExporterStdout = "stdout"
	TracingExporterOTLP   = "otlp"
)
