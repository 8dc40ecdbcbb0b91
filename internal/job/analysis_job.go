package job

import (
	"context"
	"fmt"
	"os"
	"time"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/service"
	"alpha-signal/internal/signal"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type AnalysisRunner interface {
	Run(ctx context.Context, req service.AnalysisRequest) (domain.Batch, error)
}

type AnalysisJobConfig struct {
	PollInterval time.Duration
	TopN         int
	// FuturesFile, when set, is re-read on every run and supplies futures
	// flow for the scanned symbols.
	FuturesFile string
}

type AnalysisJob struct {
	tracer trace.Tracer
	runner AnalysisRunner
	cfg    AnalysisJobConfig
}

func NewAnalysisJob(tracer trace.Tracer, runner AnalysisRunner, cfg AnalysisJobConfig) *AnalysisJob {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Minute
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 50
	}
	return &AnalysisJob{tracer: tracer, runner: runner, cfg: cfg}
}

func (j *AnalysisJob) Start(ctx context.Context) {
	if j.runner == nil {
		log.Info().Msg("analysis job disabled: no runner")
		<-ctx.Done()
		return
	}

	j.runOnce(ctx)
	ticker := time.NewTicker(j.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *AnalysisJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "analysis-job.run-once")
	defer span.End()

	req := service.AnalysisRequest{Top: j.cfg.TopN}
	if j.cfg.FuturesFile != "" {
		futures, err := loadFutures(j.cfg.FuturesFile)
		if err != nil {
			log.Error().Err(err).Str("file", j.cfg.FuturesFile).Msg("analysis job: futures input unreadable, scanning without it")
		} else {
			req.Futures = futures
		}
	}

	batch, err := j.runner.Run(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Msg("analysis cycle error")
		return
	}
	span.SetAttributes(attribute.Int("analysis.results", len(batch.Results)))
	log.Info().
		Str("run_id", batch.RunID).
		Int("results", len(batch.Results)).
		Int("strong_buy", len(batch.Recommendations.StrongBuy)).
		Int("strong_sell", len(batch.Recommendations.StrongSell)).
		Int("warnings", len(batch.Errors)).
		Msg("analysis cycle complete")
}

func loadFutures(path string) (signal.FuturesSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return signal.FuturesSet{}, fmt.Errorf("open futures input: %w", err)
	}
	defer f.Close()
	return signal.DecodeFutures(f)
}
