// Command scan scores a set of crypto assets once and prints a summary
// table plus the strongest recommendations.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"alpha-signal/internal/config"
	"alpha-signal/internal/logger"
	"alpha-signal/internal/service"
	alphasignal "alpha-signal/internal/signal"
	"alpha-signal/internal/source"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"
)

const recommendationCount = 5

var (
	loadConfigFunc   = config.Load
	buildSourcesFunc = source.Build
)

type scanOptions struct {
	input       string
	symbols     []string
	top         int
	minNetScore float64
	output      string
	sampleOnly  bool
	jsonOut     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Score crypto assets into BUY/SELL signals",
		Long: `Scores each symbol from social, news, futures flow and macro data.

Symbols come from --symbols, else the --top N assets by market cap, else the
pairs found in the --input futures payload.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScan(ctx, cmd.OutOrStdout(), opts, cmd.Flags().Changed("min-net-score"))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "Futures fund-flow JSON file")
	flags.StringSliceVarP(&opts.symbols, "symbols", "s", nil, "Comma-separated symbols to score")
	flags.IntVar(&opts.top, "top", 0, "Score the top N assets by market cap")
	flags.Float64Var(&opts.minNetScore, "min-net-score", alphasignal.DefaultThreshold, "Minimum |net score| for a BUY or SELL signal")
	flags.StringVarP(&opts.output, "output", "o", "", "Write detailed results JSON to this file")
	flags.BoolVar(&opts.sampleOnly, "sample", false, "Use the bundled sample data for every source")
	flags.BoolVar(&opts.jsonOut, "json", false, "Print the batch as JSON instead of a table")
	return cmd
}

func runScan(ctx context.Context, out io.Writer, opts *scanOptions, thresholdSet bool) error {
	cfg, err := loadConfigFunc()
	if err != nil {
		return err
	}
	logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)

	threshold := cfg.Analysis.MinNetScore
	if thresholdSet {
		if opts.minNetScore <= 0 {
			return errors.New("--min-net-score must be positive")
		}
		threshold = opts.minNetScore
	}
	if opts.top < 0 {
		return errors.New("--top must not be negative")
	}
	if opts.sampleOnly {
		cfg.Sources.SampleOnly = true
	}

	tracer := noop.NewTracerProvider().Tracer("alpha-signal/scan")
	sources, err := buildSourcesFunc(cfg, tracer)
	if err != nil {
		return fmt.Errorf("build sources: %w", err)
	}

	req := service.AnalysisRequest{Symbols: opts.symbols, Top: opts.top, Threshold: threshold}
	if opts.input != "" {
		req.Futures, err = readFutures(opts.input)
		if err != nil {
			return err
		}
	}

	svc := service.NewAnalysisService(tracer, sources, nil, nil, nil, service.AnalysisConfig{
		Workers:       cfg.Analysis.Workers,
		SymbolTimeout: cfg.Analysis.SymbolTimeout,
		Threshold:     threshold,
	})
	batch, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}
	for _, msg := range batch.Errors {
		log.Warn().Msg(msg)
	}

	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batch); err != nil {
			return fmt.Errorf("encode batch: %w", err)
		}
	} else {
		fmt.Fprintf(out, "Sources: %s\n", formatModes(sources.Modes))
		fmt.Fprintln(out, renderSummary(batch.Results))
		fmt.Fprintln(out, renderRecommendations(batch.Recommendations.Top(recommendationCount)))
	}

	if opts.output != "" {
		if err := writeResults(opts.output, batch); err != nil {
			return err
		}
		if !opts.jsonOut {
			fmt.Fprintf(out, "Detailed results saved to %s\n", opts.output)
		}
	}
	return nil
}

func readFutures(path string) (alphasignal.FuturesSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return alphasignal.FuturesSet{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return alphasignal.DecodeFutures(f)
}

func writeResults(path string, batch any) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

func formatModes(modes map[string]string) string {
	parts := make([]string, 0, len(modes))
	for _, category := range []string{"social", "news", "macro", "fear_greed", "defi_tvl", "universe"} {
		if mode, ok := modes[category]; ok {
			parts = append(parts, category+"="+mode)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, " ")
}
