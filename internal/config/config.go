package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the rigel server and CLI configuration.
type Config struct {
	HTTP    HTTPConfig     `yaml:"http"`
	Index   IndexConfig    `yaml:"index"`
	Auth    AuthConfig     `yaml:"auth"`
	Logging LoggingConfig  `yaml:"logging"`
	Schemas []SchemaConfig `yaml:"schemas"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IndexConfig selects and configures the search index backend.
type IndexConfig struct {
	Driver           string   `yaml:"driver"` // solr, redis, memory (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	RedisIndex       string   `yaml:"redis_index"`
	SolrURL          string   `yaml:"solr_url"`
	Core             string   `yaml:"core"`
	TimeoutSec       int      `yaml:"timeout_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	MaxRows          int      `yaml:"max_rows"`
	Fixtures         string   `yaml:"fixtures"` // memory driver: YAML file of seed documents
}

// SchemaConfig declares a content type served by the API.
type SchemaConfig struct {
	Name          string        `yaml:"name"`
	ID            string        `yaml:"id"`            // identifier attribute (default: id)
	Discriminator string        `yaml:"discriminator"` // optional type attribute
	Variants      []string      `yaml:"variants"`      // extra discriminator values served by this schema
	Fields        []FieldConfig `yaml:"fields"`
}

// FieldConfig declares one typed attribute.
type FieldConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // string, text, int, int64, float, bool, time (default: string)
}

// FieldTypes lists the accepted FieldConfig.Type values.
var FieldTypes = []string{"string", "text", "int", "int64", "float", "bool", "time"}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Driver == "" {
		c.Index.Driver = "memory"
	}
	if c.Index.TimeoutSec <= 0 {
		c.Index.TimeoutSec = 10
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Index.MaxRows <= 0 {
		c.Index.MaxRows = 1000
	}
	for i := range c.Schemas {
		if c.Schemas[i].ID == "" {
			c.Schemas[i].ID = "id"
		}
		for j := range c.Schemas[i].Fields {
			if c.Schemas[i].Fields[j].Type == "" {
				c.Schemas[i].Fields[j].Type = "string"
			}
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Index.Driver {
	case "memory":
	case "redis":
		if len(c.Index.Addrs) == 0 {
			return fmt.Errorf("index.addrs is required for the redis driver")
		}
		if c.Index.RedisIndex == "" {
			return fmt.Errorf("index.redis_index is required for the redis driver")
		}
	case "solr":
		if c.Index.SolrURL == "" || c.Index.Core == "" {
			return fmt.Errorf("index.solr_url and index.core are required for the solr driver")
		}
	default:
		return fmt.Errorf("index.driver must be \"solr\", \"redis\" or \"memory\", got %q", c.Index.Driver)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be \"json\" or \"console\", got %q", c.Logging.Format)
	}
	if len(c.Schemas) == 0 {
		return fmt.Errorf("at least one schema is required")
	}
	seen := make(map[string]struct{}, len(c.Schemas))
	for i, s := range c.Schemas {
		if s.Name == "" {
			return fmt.Errorf("schemas[%d].name is required", i)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("schemas.%s is declared twice", s.Name)
		}
		seen[s.Name] = struct{}{}
		if len(s.Variants) > 0 && s.Discriminator == "" {
			return fmt.Errorf("schemas.%s.variants require a discriminator", s.Name)
		}
		for _, f := range s.Fields {
			if f.Name == "" {
				return fmt.Errorf("schemas.%s has a field without a name", s.Name)
			}
			if !validFieldType(f.Type) {
				return fmt.Errorf("schemas.%s.fields.%s.type must be one of %s, got %q",
					s.Name, f.Name, strings.Join(FieldTypes, ", "), f.Type)
			}
		}
	}
	return nil
}

func validFieldType(t string) bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
