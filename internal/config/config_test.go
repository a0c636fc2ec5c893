package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.01, cfg.LearningRate)
	assert.Equal(t, 1000, cfg.Epochs)
	assert.Equal(t, "python_metrics.png", cfg.Output)
	assert.Equal(t, 300, cfg.DPI)
	assert.True(t, cfg.Show)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, cfg.X)
	assert.Equal(t, []float64{2, 4, 6, 8, 10}, cfg.Y)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
epochs: 500
learning_rate: 0.02
x: [0, 1, 2]
y: [1, 3, 5]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Epochs)
	assert.Equal(t, 0.02, cfg.LearningRate)
	assert.Equal(t, []float64{0, 1, 2}, cfg.X)
	assert.Equal(t, 50, cfg.SampleEvery)
	assert.Equal(t, "python_metrics.png", cfg.Output)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "batch_size: 4\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadRejectsMismatchedData(t *testing.T) {
	path := writeConfig(t, "x: [1, 2]\ny: [1]\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{Epochs: 1, MemorySource: "rss"})
	assert.Equal(t, 1, cfg.Epochs)
	assert.True(t, cfg.Show)
	assert.Equal(t, "rss", cfg.MemorySource)
	assert.Equal(t, 0.01, cfg.LearningRate)
}

func TestApplyOverridesShow(t *testing.T) {
	off, on := false, true

	cfg := Default()
	cfg.ApplyOverrides(Overrides{Show: &off})
	assert.False(t, cfg.Show)

	cfg.ApplyOverrides(Overrides{Show: &on})
	assert.True(t, cfg.Show)
}

func TestLoadShowFalseCanBeOverridden(t *testing.T) {
	path := writeConfig(t, "show: false\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Show)

	on := true
	cfg.ApplyOverrides(Overrides{Show: &on})
	assert.True(t, cfg.Show)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero learning rate": func(c *Config) { c.LearningRate = 0 },
		"zero epochs":        func(c *Config) { c.Epochs = 0 },
		"no output":          func(c *Config) { c.Output = "" },
		"bad memory source":  func(c *Config) { c.MemorySource = "gpu" },
		"empty data":         func(c *Config) { c.X, c.Y = nil, nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestReferenceConfigMatchesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "reference.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
