package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 9848,
		},
		Resolver: ResolverConfig{
			Endpoint:  "https://www.tikwm.com/api/",
			RateLimit: 1,
			RateBurst: 1,
		},
		Download: DownloadConfig{
			Workers: 4,
		},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() should pass, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "missing endpoint",
			mutate:  func(c *Config) { c.Resolver.Endpoint = "" },
			wantErr: true,
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.Resolver.RateLimit = -1 },
			wantErr: true,
		},
		{
			name:    "zero burst with rate limit",
			mutate:  func(c *Config) { c.Resolver.RateBurst = 0 },
			wantErr: true,
		},
		{
			name: "zero burst without rate limit",
			mutate: func(c *Config) {
				c.Resolver.RateLimit = 0
				c.Resolver.RateBurst = 0
			},
			wantErr: false,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name: "sqlite persistence without path",
			mutate: func(c *Config) {
				c.Events.PersistToSQLite = true
				c.Events.SQLitePath = ""
			},
			wantErr: true,
		},
		{
			name:    "no download workers",
			mutate:  func(c *Config) { c.Download.Workers = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
		want string
	}{
		{
			name: "default",
			cfg:  ServerConfig{Host: "0.0.0.0", Port: 9848},
			want: "0.0.0.0:9848",
		},
		{
			name: "localhost",
			cfg:  ServerConfig{Host: "localhost", Port: 8080},
			want: "localhost:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Address(); got != tt.want {
				t.Errorf("Address() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Resolver.Endpoint != "https://www.tikwm.com/api/" {
		t.Errorf("Endpoint = %q", cfg.Resolver.Endpoint)
	}
	if len(cfg.Resolver.FallbackEndpoints) != 2 {
		t.Errorf("FallbackEndpoints = %v, want 2 entries", cfg.Resolver.FallbackEndpoints)
	}
	if cfg.Resolver.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0 (no timeout)", cfg.Resolver.Timeout)
	}
	if cfg.Session.PasteDebounce != 500*time.Millisecond {
		t.Errorf("PasteDebounce = %v, want 500ms", cfg.Session.PasteDebounce)
	}
	if cfg.Server.Port != 9848 {
		t.Errorf("Port = %d, want 9848", cfg.Server.Port)
	}
}

func TestLoad_FromYAMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// envconfig applies defaults over YAML, so only fields without a
	// default tag keep their YAML value.
	t.Setenv("SERVER_PORT", "8080")

	yamlContent := `
server:
  api_key: "yaml-api-key"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.APIKey != "yaml-api-key" {
		t.Errorf("APIKey = %q, want %q", cfg.Server.APIKey, "yaml-api-key")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  api_key: "yaml-api-key"
resolver:
  endpoint: "https://yaml.example/api/"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("API_KEY", "env-api-key")
	t.Setenv("RESOLVER_ENDPOINT", "https://env.example/api/")
	t.Setenv("RESOLVER_RATE_LIMIT", "0.5")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.APIKey != "env-api-key" {
		t.Errorf("APIKey should be from env, got %q", cfg.Server.APIKey)
	}
	if cfg.Resolver.Endpoint != "https://env.example/api/" {
		t.Errorf("Endpoint should be from env, got %q", cfg.Resolver.Endpoint)
	}
	if cfg.Resolver.RateLimit != 0.5 {
		t.Errorf("RateLimit = %v, want 0.5", cfg.Resolver.RateLimit)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
server:
  host: "localhost
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load should fail for invalid YAML")
	}
}

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load should fail for nonexistent file")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("RESOLVER_ENDPOINT", "")

	if _, err := Load(""); err == nil {
		t.Error("Load should fail validation without an endpoint")
	}
}
