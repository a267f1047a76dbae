package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/drivethru-sim/drivethru-sim/sim"
	"github.com/drivethru-sim/drivethru-sim/sim/export"
	"github.com/drivethru-sim/drivethru-sim/sim/restaurant"
	"github.com/drivethru-sim/drivethru-sim/sim/telemetry"
)

// RunOptions controls the driver loop around individual restaurant runs.
type RunOptions struct {
	Iterations    int       // independent runs; run i uses seed+i
	ExportParquet string    // per-customer parquet file (optional)
	ExportCSV     string    // per-customer CSV file (optional)
	MetricsFile   string    // prometheus textfile (optional)
	Progress      io.Writer // progress bar destination for multi-run invocations (optional)
}

// RunIterations runs opts.Iterations restaurants built from cfg, printing each
// summary to out followed by the mean averages across runs.
func RunIterations(cfg restaurant.Config, opts RunOptions, out io.Writer) ([]*restaurant.Summary, error) {
	if opts.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", opts.Iterations)
	}

	var collector *telemetry.Collector
	if opts.MetricsFile != "" {
		collector = telemetry.New(telemetry.DefaultNamespace)
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil && opts.Iterations > 1 {
		bar = progressbar.NewOptions(opts.Iterations,
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("simulating"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var numbers sim.Sequence
	var rows []export.Row
	summaries := make([]*restaurant.Summary, 0, opts.Iterations)
	averages := make([]*restaurant.StageAverages, 0, opts.Iterations)

	for i := 0; i < opts.Iterations; i++ {
		runCfg := cfg
		runCfg.Seed = cfg.Seed + int64(i)

		runOpts := []restaurant.Option{restaurant.WithNumber(int(numbers.Next()))}
		if collector != nil {
			runOpts = append(runOpts, restaurant.WithSink(collector))
		}
		r, err := restaurant.New(runCfg, runOpts...)
		if err != nil {
			return nil, err
		}
		if err := r.Run(); err != nil {
			return nil, err
		}

		s := r.Summary()
		s.Print(out)
		summaries = append(summaries, s)
		averages = append(averages, s.Averages)
		if collector != nil {
			collector.Record(s)
		}
		if opts.ExportParquet != "" || opts.ExportCSV != "" {
			rows = append(rows, export.Rows(r.RunID(), r.Number(), r.Customers())...)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if opts.Iterations > 1 {
		if mean, err := restaurant.MeanAverages(averages); err == nil {
			restaurant.PrintMeans(out, opts.Iterations, mean)
		} else {
			logrus.Warnf("no run had customers entering the line: %v", err)
		}
	}

	if opts.ExportParquet != "" {
		if err := export.WriteParquet(opts.ExportParquet, rows); err != nil {
			return summaries, err
		}
		logrus.Infof("wrote %d customer rows to %s", len(rows), opts.ExportParquet)
	}
	if opts.ExportCSV != "" {
		if err := writeCSVFile(opts.ExportCSV, rows); err != nil {
			return summaries, err
		}
		logrus.Infof("wrote %d customer rows to %s", len(rows), opts.ExportCSV)
	}
	if collector != nil {
		if err := collector.WriteTextfile(opts.MetricsFile); err != nil {
			return summaries, err
		}
		logrus.Infof("wrote metrics to %s", opts.MetricsFile)
	}
	return summaries, nil
}

func writeCSVFile(path string, rows []export.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
