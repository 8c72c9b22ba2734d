package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  host: 0.0.0.0
  port: 8080
database:
  host: localhost
  port: 5432
  name: murph
  user: murph
  password: secret
auth:
  api_key: test-key
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoadValid verifies a well-formed YAML file loads with all sections
// populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "murph" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "murph")
	}
	if cfg.Auth.APIKey != "test-key" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key")
	}
	if cfg.Tailscale.Enabled {
		t.Error("tailscale should default to disabled")
	}
}

// TestLoadEnvOverrides verifies environment variables win over file values.
func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MURPH_SERVER_PORT", "9090")
	t.Setenv("MURPH_DB_PASSWORD", "from-env")
	t.Setenv("MURPH_AUTH_API_KEY", "env-key")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("database.password = %q, want %q", cfg.Database.Password, "from-env")
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "env-key")
	}
}

// TestLoadMissingRequired verifies validation rejects configs with missing
// required fields.
func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no api key", `
server:
  port: 8080
database:
  host: localhost
  port: 5432
  name: murph
  user: murph
`},
		{"no database host", `
server:
  port: 8080
database:
  port: 5432
  name: murph
  user: murph
auth:
  api_key: k
`},
		{"no port without tailscale", `
database:
  host: localhost
  port: 5432
  name: murph
  user: murph
auth:
  api_key: k
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, tt.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// TestLoadTailscale verifies an enabled tailscale section waives the port
// requirement but demands a hostname.
func TestLoadTailscale(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
database:
  host: localhost
  port: 5432
  name: murph
  user: murph
auth:
  api_key: k
tailscale:
  enabled: true
  hostname: murph
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Tailscale.Enabled || cfg.Tailscale.Hostname != "murph" {
		t.Errorf("tailscale = %+v", cfg.Tailscale)
	}

	_, err = Load(writeTemp(t, `
database:
  host: localhost
  port: 5432
  name: murph
  user: murph
auth:
  api_key: k
tailscale:
  enabled: true
`))
	if err == nil {
		t.Error("expected error for enabled tailscale without hostname")
	}
}

// TestLoadMissingFile verifies a nonexistent path is an error.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestDSN verifies connection string assembly and the sslmode default.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "murph", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/murph?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}

	d.SSLMode = "require"
	if got := d.DSN(); got != "postgres://u:p@db:5432/murph?sslmode=require" {
		t.Errorf("dsn = %q", got)
	}
}
