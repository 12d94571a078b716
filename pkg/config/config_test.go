package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotEmpty(t, cfg.Host.URL)
	assert.NotEmpty(t, cfg.Task.ID)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webpilot.yaml")
	content := `host:
  url: http://localhost:9333
  connect_timeout: 10s
task:
  id: task-42
navigation:
  allowed_hosts:
    - "*.example.com"
  denied_hosts:
    - "admin.example.com"
logging:
  verbosity: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9333", cfg.Host.URL)
	assert.Equal(t, 10*time.Second, cfg.Host.ConnectTimeout)
	assert.Equal(t, "task-42", cfg.Task.ID)
	assert.Equal(t, []string{"*.example.com"}, cfg.Navigation.AllowedHosts)
	assert.Equal(t, []string{"admin.example.com"}, cfg.Navigation.DeniedHosts)
	assert.Equal(t, "debug", cfg.Logging.Verbosity)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_GeneratesTaskID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webpilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host:\n  url: http://localhost:9333\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Task.ID, "task ID should be generated when the file omits it")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/webpilot.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing host url",
			mutate:  func(c *Config) { c.Host.URL = "" },
			wantErr: true,
		},
		{
			name:    "missing task id",
			mutate:  func(c *Config) { c.Task.ID = "" },
			wantErr: true,
		},
		{
			name:    "bad verbosity",
			mutate:  func(c *Config) { c.Logging.Verbosity = "chatty" },
			wantErr: true,
		},
		{
			name:    "bad navigation pattern",
			mutate:  func(c *Config) { c.Navigation.DeniedHosts = []string{"[oops"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
