package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"layout": "modern",
		"theme": "ocean",
		"port": 9000,
		"max_steps": 5000,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "modern", cfg.Layout)
	assert.Equal(t, "ocean", cfg.Theme)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 5000, cfg.MaxSteps)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	content := "layout: sidebar\ndrafts_dir: /tmp/drafts\napply_delay_ms: 250\n"

	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "sidebar", cfg.Layout)
	assert.Equal(t, "/tmp/drafts", cfg.DraftsDir)
	assert.Equal(t, 250*time.Millisecond, cfg.ApplyDelay())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("port: [1, 2"), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"port", Config{Port: 70000}, "port"},
		{"rate", Config{RatePerMinute: -1}, "rate_per_minute"},
		{"delay", Config{ApplyDelayMS: -5}, "apply_delay_ms"},
		{"steps", Config{MaxSteps: -1}, "max_steps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_MissingFiles(t *testing.T) {
	cfg := &Config{Data: "/nonexistent/resume.json"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data file not found")

	cfg = &Config{CustomLayout: "/nonexistent/layout.jsx"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "custom layout file not found")
}

func TestValidate_ValidConfig(t *testing.T) {
	data := filepath.Join(t.TempDir(), "resume.json")
	require.NoError(t, os.WriteFile(data, []byte("{}"), 0644))

	cfg := &Config{
		Data:     data,
		Layout:   "simple",
		Port:     8080,
		MaxSteps: 1000,
	}

	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		Layout:    "classic",
		Theme:     "ocean",
		DraftsDir: "drafts",
		Port:      9000,
		MaxDepth:  50,
	}

	partial := Config{
		Layout: "modern",
		Data:   "resume.json",
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "modern", merged.Layout)
	assert.Equal(t, "resume.json", merged.Data)

	// Default values should fill in empty fields
	assert.Equal(t, "ocean", merged.Theme)
	assert.Equal(t, "drafts", merged.DraftsDir)
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, 50, merged.MaxDepth)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{
		Layout: "simple",
		Data:   "resume.yaml",
	}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "simple", merged.Layout)
	assert.Equal(t, "resume.yaml", merged.Data)
}

func TestWithBuiltinDefaults(t *testing.T) {
	cfg := Config{Port: 3000}.WithBuiltinDefaults()
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, DefaultDraftsDir, cfg.DraftsDir)
	assert.Equal(t, DefaultRatePerMinute, cfg.RatePerMinute)
	assert.Equal(t, DefaultApplyDelay, cfg.ApplyDelay())
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDatabaseURL, "postgres://localhost/resumes")
	t.Setenv(EnvPort, "9100")

	cfg := Config{}
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "postgres://localhost/resumes", cfg.DatabaseURL)
	assert.Equal(t, 9100, cfg.Port)

	cfg = Config{DatabaseURL: "postgres://flag/db", Port: 1}
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "postgres://flag/db", cfg.DatabaseURL)
	assert.Equal(t, 1, cfg.Port)
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	cfg := Config{}
	err := cfg.ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvPort)
}
