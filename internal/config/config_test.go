package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/vision-tools-mcp/internal/detection"
	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vision.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, imaging.CannyOptions{GaussianRadius: 2, LowRatio: 0.075, HighRatio: 0.175}, cfg.Canny)
	assert.Equal(t, imaging.CannyOptions{GaussianRadius: 2, LowRatio: 0.05, HighRatio: 0.10}, cfg.Lines.Canny)
	assert.Equal(t, 10, cfg.Lines.MinSize)
	assert.False(t, cfg.Lines.IncludeCross)
	assert.Equal(t, detection.DefaultStopSignOptions(), cfg.StopSign.StopSignOptions)
	assert.Empty(t, cfg.StopSign.TemplatePath)
	assert.False(t, cfg.Debug())
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
log_level: debug
lines:
  low_ratio: 0.02
  include_cross: true
stop_sign:
  color: {min_r: 100, max_r: 255, min_g: 0, max_g: 60, min_b: 0, max_b: 60}
  max_dissimilarity: 0.25
  template_path: /tmp/sign.png
`))
	require.NoError(t, err)

	assert.True(t, cfg.Debug())
	assert.Equal(t, 0.02, cfg.Lines.Canny.LowRatio)
	assert.Equal(t, 0.10, cfg.Lines.Canny.HighRatio, "unset keys keep defaults")
	assert.True(t, cfg.Lines.IncludeCross)
	assert.Equal(t, uint8(100), cfg.StopSign.Color.MinR)
	assert.Equal(t, uint8(60), cfg.StopSign.Color.MaxB)
	assert.Equal(t, 0.25, cfg.StopSign.MaxDissimilarity)
	assert.Equal(t, 50, cfg.StopSign.MinClusterWidth)
	assert.Equal(t, "/tmp/sign.png", cfg.StopSign.TemplatePath)
	assert.Equal(t, Default().Canny, cfg.Canny)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "canny:\n  sigma: 3\n"},
		{"bad log level", "log_level: verbose\n"},
		{"inverted ratios", "canny:\n  low_ratio: 0.5\n  high_ratio: 0.2\n"},
		{"zero min size", "lines:\n  min_size: 0\n"},
		{"color overflow", "stop_sign:\n  color: {max_r: 300}\n"},
		{"bad ratio", "stop_sign:\n  min_cluster_ratio: 1.5\n"},
		{"not yaml", "canny: [1, 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "canny:\n  gaussian_radius: 3\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Canny.GaussianRadius)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		t.Setenv(EnvLogLevel, "")
		cfg, err := FromEnv("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("env path and level", func(t *testing.T) {
		t.Setenv(EnvConfigPath, writeConfig(t, "lines:\n  min_size: 25\n"))
		t.Setenv(EnvLogLevel, "debug")
		cfg, err := FromEnv("")
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.Lines.MinSize)
		assert.True(t, cfg.Debug())
	})

	t.Run("explicit path wins", func(t *testing.T) {
		t.Setenv(EnvConfigPath, writeConfig(t, "lines:\n  min_size: 25\n"))
		t.Setenv(EnvLogLevel, "")
		cfg, err := FromEnv(writeConfig(t, "lines:\n  min_size: 40\n"))
		require.NoError(t, err)
		assert.Equal(t, 40, cfg.Lines.MinSize)
	})

	t.Run("bad level", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		t.Setenv(EnvLogLevel, "trace")
		_, err := FromEnv("")
		assert.Error(t, err)
	})
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.StopSign.TemplatePath = "sign.png"
	cfg.Lines.IncludeCross = true

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "min_cluster_width: 50")
	assert.Contains(t, string(data), "include_cross: true")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
