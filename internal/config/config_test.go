package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:  HTTPConfig{Port: 8080},
		Index: IndexConfig{Driver: "memory"},
		Schemas: []SchemaConfig{{
			Name:          "play",
			ID:            "id",
			Discriminator: "type",
			Fields:        []FieldConfig{{Name: "sceneCount", Type: "int"}},
		}},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_LoggingFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Errorf("expected logging.format error, got %v", err)
	}
}

func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		index   IndexConfig
		wantErr bool
	}{
		{"memory", IndexConfig{Driver: "memory"}, false},
		{"redis", IndexConfig{Driver: "redis", Addrs: []string{"localhost:6379"}, RedisIndex: "idx:content"}, false},
		{"redis without addrs", IndexConfig{Driver: "redis", RedisIndex: "idx:content"}, true},
		{"redis without index", IndexConfig{Driver: "redis", Addrs: []string{"localhost:6379"}}, true},
		{"solr", IndexConfig{Driver: "solr", SolrURL: "http://localhost:8983/solr", Core: "content"}, false},
		{"solr without core", IndexConfig{Driver: "solr", SolrURL: "http://localhost:8983/solr"}, true},
		{"unknown", IndexConfig{Driver: "elastic"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Index = tt.index
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Schemas(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"none", func(c *Config) { c.Schemas = nil }, "at least one schema"},
		{"unnamed", func(c *Config) { c.Schemas[0].Name = "" }, "schemas[0].name"},
		{"duplicate", func(c *Config) { c.Schemas = append(c.Schemas, c.Schemas[0]) }, "declared twice"},
		{"variants without discriminator", func(c *Config) {
			c.Schemas[0].Discriminator = ""
			c.Schemas[0].Variants = []string{"tragedy"}
		}, "require a discriminator"},
		{"bad field type", func(c *Config) { c.Schemas[0].Fields[0].Type = "decimal" }, "schemas.play.fields.sceneCount.type"},
		{"unnamed field", func(c *Config) { c.Schemas[0].Fields[0].Name = "" }, "without a name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Schemas: []SchemaConfig{{Name: "play", Fields: []FieldConfig{{Name: "title"}}}}}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Index.Driver != "memory" {
		t.Errorf("expected Driver=memory, got %q", cfg.Index.Driver)
	}
	if cfg.Index.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Index.ReadinessTimeout)
	}
	if cfg.Index.MaxRows != 1000 {
		t.Errorf("expected MaxRows=1000, got %d", cfg.Index.MaxRows)
	}
	if cfg.Schemas[0].ID != "id" {
		t.Errorf("expected schema id field 'id', got %q", cfg.Schemas[0].ID)
	}
	if cfg.Schemas[0].Fields[0].Type != "string" {
		t.Errorf("expected field type 'string', got %q", cfg.Schemas[0].Fields[0].Type)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Index: IndexConfig{Driver: "solr", ReadinessTimeout: 15, MaxRows: 50},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Index.Driver != "solr" {
		t.Errorf("expected Driver=solr, got %q", cfg.Index.Driver)
	}
	if cfg.Index.MaxRows != 50 {
		t.Errorf("expected MaxRows=50, got %d", cfg.Index.MaxRows)
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("RIGEL_TEST_PORT", "9090")

	path := filepath.Join(t.TempDir(), "test.yaml")
	data := `
http:
  port: ${RIGEL_TEST_PORT}
index:
  driver: ${RIGEL_TEST_DRIVER:-memory}
schemas:
  - name: play
    discriminator: type
    fields:
      - name: sceneCount
        type: int
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Index.Driver != "memory" {
		t.Errorf("expected default driver, got %q", cfg.Index.Driver)
	}
	if len(cfg.Schemas) != 1 || cfg.Schemas[0].ID != "id" {
		t.Errorf("unexpected schemas: %+v", cfg.Schemas)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_Local(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if len(cfg.Schemas) == 0 {
		t.Error("local config should declare schemas")
	}
}
