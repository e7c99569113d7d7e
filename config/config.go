package config

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/awantoch/cvdfunctions/constants"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed functions.config.schema.json
var schemaJSON []byte

type Config struct {
	Staging StagingConfig `json:"staging" yaml:"staging"`
	Backend BackendConfig `json:"backend" yaml:"backend"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// StagingConfig controls the build-time model copy.
type StagingConfig struct {
	// Source is a directory or an s3://bucket/prefix URL.
	Source string   `json:"source" yaml:"source"`
	Region string   `json:"region,omitempty" yaml:"region,omitempty"`
	Dest   string   `json:"dest" yaml:"dest"`
	Models []string `json:"models,omitempty" yaml:"models,omitempty"`
}

// BackendConfig selects the application the predict function forwards to.
type BackendConfig struct {
	Driver         string `json:"driver" yaml:"driver"`
	URL            string `json:"url,omitempty" yaml:"url,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`

	// ModelsDir overrides where staged models are looked up at cold start.
	ModelsDir string `json:"models_dir,omitempty" yaml:"models_dir,omitempty"`
}

type TracingConfig struct {
	Exporter    string `json:"exporter" yaml:"exporter"`
	Endpoint    string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadConfig reads a JSON or YAML config file, validates it against the
// embedded schema and fills in defaults.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := toJSON(path, raw)
	if err != nil {
		return nil, err
	}
	if err := Validate(doc); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	var cfg Config
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Load is the lenient entry point used by the functions and the CLI: a
// missing file yields the defaults, and environment overrides are applied
// last. An empty path falls back to $CVDFN_CONFIG, then functions.config.json.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(constants.EnvConfigPath)
	}
	if path == "" {
		path = constants.ConfigFileName
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}
		cfg = Default()
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Staging.Source == "" {
		c.Staging.Source = constants.DefaultModelSourceDir
	}
	if c.Staging.Dest == "" {
		c.Staging.Dest = constants.DefaultModelDestDir
	}
	if len(c.Staging.Models) == 0 {
		c.Staging.Models = append([]string(nil), constants.ModelFiles...)
	}
	if c.Backend.Driver == "" {
		c.Backend.Driver = DefaultBackendDriver
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = DefaultBackendTimeoutSeconds
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = DefaultServiceName
	}
}

// ApplyEnv overrides file settings with environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(constants.EnvBackendDriver)); v != "" {
		c.Backend.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv(constants.EnvBackendURL)); v != "" {
		c.Backend.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(constants.EnvTracingExporter)); v != "" {
		c.Tracing.Exporter = v
	}
	if os.Getenv(constants.EnvDebug) != "" {
		c.Log.Level = "debug"
	}
}

// Validate checks a JSON document against the embedded config schema.
func Validate(doc []byte) error {
	schema, err := jsonschema.CompileString(constants.ConfigSchemaFile, string(schemaJSON))
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return err
	}
	return schema.Validate(v)
}

// toJSON normalizes YAML input to JSON so both formats share one schema.
func toJSON(path string, raw []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, errors.Wrapf(err, "parse yaml %s", path)
		}
		if v == nil {
			v = map[string]any{}
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "convert yaml %s", path)
		}
		return out, nil
	default:
		if len(strings.TrimSpace(string(raw))) == 0 {
			return []byte("{}"), nil
		}
		return raw, nil
	}
}
