package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"linreg-metrics/internal/dataset"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	X            []float64 `yaml:"x"`
	Y            []float64 `yaml:"y"`
	LearningRate float64   `yaml:"learning_rate"`
	Epochs       int       `yaml:"epochs"`
	SampleEvery  int       `yaml:"sample_every"`
	LogEvery     int       `yaml:"log_every"`
	Output       string    `yaml:"output"`
	DPI          int       `yaml:"dpi"`
	Show         bool      `yaml:"show"`
	MemorySource string    `yaml:"memory_source"`
	MetricsBlob  string    `yaml:"metrics_blob"`
	PromTextfile string    `yaml:"prom_textfile"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	LearningRate float64
	Epochs       int
	Output       string
	DPI          int
	Show         *bool
	MemorySource string
	MetricsBlob  string
	PromTextfile string
}

// Default returns the configuration of the reference run: the 5-point y = 2x
// dataset, learning rate 0.01 and 1000 epochs. The chart is shown whenever a
// display is available.
func Default() *Config {
	toy := dataset.Toy()
	return &Config{
		X:            toy.X(),
		Y:            toy.Y(),
		LearningRate: 0.01,
		Epochs:       1000,
		SampleEvery:  50,
		LogEvery:     200,
		Output:       "python_metrics.png",
		DPI:          300,
		Show:         true,
		MemorySource: "heap",
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.DPI > 0 {
		c.DPI = o.DPI
	}
	if o.Show != nil {
		c.Show = *o.Show
	}
	if o.MemorySource != "" {
		c.MemorySource = o.MemorySource
	}
	if o.MetricsBlob != "" {
		c.MetricsBlob = o.MetricsBlob
	}
	if o.PromTextfile != "" {
		c.PromTextfile = o.PromTextfile
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.X) == 0 {
		return errors.New("x must not be empty")
	}
	if len(c.X) != len(c.Y) {
		return fmt.Errorf("x and y must have equal length (got %d and %d)", len(c.X), len(c.Y))
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.Output == "" {
		return errors.New("output must be set")
	}
	switch c.MemorySource {
	case "heap", "rss":
	case "":
		c.MemorySource = "heap"
	default:
		return fmt.Errorf("memory_source must be heap or rss (got %q)", c.MemorySource)
	}
	if c.SampleEvery <= 0 {
		c.SampleEvery = 50
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 200
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	return nil
}
