package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"linreg-metrics/internal/config"
	"linreg-metrics/internal/dataset"
	"linreg-metrics/internal/memtrace"
	"linreg-metrics/internal/metrics"
	"linreg-metrics/internal/model"
	"linreg-metrics/internal/report"
	"linreg-metrics/internal/trainer"
)

// predictAt is the input used for the sample prediction in the summary.
const predictAt = 7.0

type options struct {
	configPath string
	logLevel   string
	show       bool
	noShow     bool
	overrides  config.Overrides
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "linreg-metrics",
		Short: "Fit y = w*x + b by gradient descent and chart loss, parameters and memory",
		Long: `linreg-metrics trains a single-variable linear regression on a 5-point
dataset with batch gradient descent, prints progress every 200 epochs and a
summary, and renders four diagnostic charts to a PNG.

With no flags it runs 1000 epochs at learning rate 0.01 and writes
python_metrics.png. The chart is opened in the platform image viewer when
a display is available; pass --no-show to skip it.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("show") {
				opts.overrides.Show = &opts.show
			}
			if opts.noShow {
				off := false
				opts.overrides.Show = &off
			}
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Path to YAML config")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.IntVar(&opts.overrides.Epochs, "epochs", 0, "Number of training epochs")
	f.Float64Var(&opts.overrides.LearningRate, "learning-rate", 0, "Gradient descent step size")
	f.StringVar(&opts.overrides.Output, "output", "", "Chart image path")
	f.IntVar(&opts.overrides.DPI, "dpi", 0, "Chart resolution")
	f.BoolVar(&opts.show, "show", true, "Open the chart in an image viewer when a display is available")
	f.BoolVar(&opts.noShow, "no-show", false, "Do not open the chart")
	f.StringVar(&opts.overrides.MemorySource, "memory-source", "", "Memory source: heap or rss")
	f.StringVar(&opts.overrides.MetricsBlob, "metrics-blob", "", "Write snapshots as a mebo blob to this path")
	f.StringVar(&opts.overrides.PromTextfile, "prom-textfile", "", "Write final gauges in Prometheus text format to this path")
	cmd.MarkFlagsMutuallyExclusive("show", "no-show")

	return cmd
}

func run(stdout, stderr io.Writer, opts *options) error {
	logger, err := newLogger(stderr, opts.logLevel)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg.ApplyOverrides(opts.overrides)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ds, err := dataset.New(cfg.X, cfg.Y)
	if err != nil {
		return err
	}
	src, err := memtrace.NewSource(cfg.MemorySource)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	logger.Info("starting training",
		"samples", ds.Len(),
		"epochs", cfg.Epochs,
		"learning_rate", cfg.LearningRate,
		"memory_source", src.Name(),
	)

	gauges := metrics.NewGauges(runID)

	fmt.Fprintln(stdout, "=== LINEAR REGRESSION ===")
	res, err := trainer.Train(ds, trainer.RunConfig{
		LearningRate: cfg.LearningRate,
		Epochs:       cfg.Epochs,
		SampleEvery:  cfg.SampleEvery,
		LogEvery:     cfg.LogEvery,
		Progress:     stdout,
		Observer:     gauges,
		Logger:       logger,
	}, src)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	gauges.Finish(res.Epochs, res.PeakMemoryBytes, res.ExecutionTime.Seconds())

	if err := res.WriteSummary(stdout); err != nil {
		return err
	}
	cw, cb := model.ClosedForm(ds)
	fmt.Fprintf(stdout, "Closed form: w = %.6f, b = %.6f\n", cw, cb)
	fmt.Fprintf(stdout, "For x = %g, y_pred ≈ %.4f\n", predictAt, res.Predict(predictAt))

	ropts := report.DefaultOptions(cfg.Output)
	ropts.DPI = cfg.DPI
	if err := report.Render(res.History, ropts); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	fmt.Fprintf(stdout, "Charts saved to '%s'\n", cfg.Output)

	if cfg.MetricsBlob != "" {
		if err := metrics.WriteBlob(cfg.MetricsBlob, res.History, res.Start); err != nil {
			return err
		}
		logger.Info("wrote metrics blob", "path", cfg.MetricsBlob, "snapshots", res.History.Len())
	}
	if cfg.PromTextfile != "" {
		if err := gauges.WriteTextfile(cfg.PromTextfile); err != nil {
			return err
		}
		logger.Info("wrote prometheus textfile", "path", cfg.PromTextfile)
	}

	if cfg.Show {
		switch err := report.Show(cfg.Output); {
		case errors.Is(err, report.ErrNoDisplay):
			logger.Debug("no display, chart not shown", "path", cfg.Output, "err", err)
		case err != nil:
			logger.Warn("cannot display chart", "path", cfg.Output, "err", err)
		}
	}
	return nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
