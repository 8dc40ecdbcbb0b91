package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/metrics"
	"alpha-signal/internal/signal"
	"alpha-signal/internal/source"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const latestBatchKey = "analysis:latest"

// ErrNoBatch is returned when no analysis run has completed yet.
var ErrNoBatch = errors.New("no analysis batch available")

type ResultStore interface {
	SaveBatch(ctx context.Context, batch domain.Batch) error
	LatestBatch(ctx context.Context) (*domain.Batch, error)
}

type Publisher interface {
	PublishBatch(ctx context.Context, batch domain.Batch) error
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type AnalysisConfig struct {
	Workers       int
	SymbolTimeout time.Duration
	Threshold     float64
	CacheTTL      time.Duration
}

// AnalysisRequest selects the symbols to score. Explicit Symbols win, then a
// top-N universe, then the symbols present in Futures. A Threshold of zero
// or below means the configured default; a zero threshold cannot be asked
// for, since every non-zero net score would then be a signal.
type AnalysisRequest struct {
	Symbols   []string
	Top       int
	Futures   signal.FuturesSet
	Threshold float64
}

// AnalysisService runs batches of symbol analyses over the configured
// sources and keeps the latest batch available to readers.
type AnalysisService struct {
	tracer    trace.Tracer
	sources   source.Set
	store     ResultStore
	redis     RedisClient
	publisher Publisher
	cfg       AnalysisConfig

	mu     sync.RWMutex
	latest *domain.Batch
	now    func() time.Time
}

// NewAnalysisService accepts nil store, redis and publisher.
func NewAnalysisService(
	tracer trace.Tracer,
	sources source.Set,
	store ResultStore,
	redisClient RedisClient,
	publisher Publisher,
	cfg AnalysisConfig,
) *AnalysisService {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.SymbolTimeout <= 0 {
		cfg.SymbolTimeout = 20 * time.Second
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = signal.DefaultThreshold
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &AnalysisService{
		tracer:    tracer,
		sources:   sources,
		store:     store,
		redis:     redisClient,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Sources reports how each category is being served.
func (s *AnalysisService) Sources() map[string]string {
	return s.sources.Modes
}

// Run scores every resolved symbol on a bounded worker pool. Failures of a
// single symbol are recorded in Batch.Errors. When ctx is cancelled the
// batch holds the symbols finished so far and ctx.Err() is returned.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (domain.Batch, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.run")
	defer span.End()

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.cfg.Threshold
	}
	batch := domain.Batch{
		RunID:     uuid.NewString(),
		StartedAt: s.now().UTC(),
		Threshold: threshold,
		Results:   []domain.ScoringResult{},
		Recommendations: domain.Recommendations{
			StrongBuy:  []domain.ScoringResult{},
			StrongSell: []domain.ScoringResult{},
		},
	}
	batch.Errors = append(batch.Errors, req.Futures.Skipped...)

	symbols, err := s.resolveSymbols(ctx, req)
	if err != nil {
		batch.FinishedAt = s.now().UTC()
		metrics.RecordRun(batch.FinishedAt.Sub(batch.StartedAt), nil, 0, err)
		return batch, err
	}
	span.SetAttributes(attribute.String("run_id", batch.RunID), attribute.Int("symbols", len(symbols)))
	log.Info().Str("run_id", batch.RunID).Int("symbols", len(symbols)).Float64("threshold", threshold).Msg("analysis run started")

	global := s.fetchGlobal(ctx, &batch)
	results, symbolErrs, runErr := s.scoreAll(ctx, symbols, req.Futures, global, threshold)

	for _, r := range results {
		if r != nil {
			batch.Results = append(batch.Results, *r)
		}
	}
	failed := 0
	for _, e := range symbolErrs {
		if e != "" {
			batch.Errors = append(batch.Errors, e)
			failed++
		}
	}
	batch.Recommendations = signal.Rank(batch.Results)
	batch.FinishedAt = s.now().UTC()

	metrics.RecordRun(batch.FinishedAt.Sub(batch.StartedAt), batch.Results, failed, runErr)
	log.Info().
		Str("run_id", batch.RunID).
		Int("scored", len(batch.Results)).
		Int("failed", failed).
		Int("strong_buy", len(batch.Recommendations.StrongBuy)).
		Int("strong_sell", len(batch.Recommendations.StrongSell)).
		Dur("took", batch.FinishedAt.Sub(batch.StartedAt)).
		Msg("analysis run finished")

	if runErr != nil {
		return batch, runErr
	}
	s.keep(ctx, &batch)
	return batch, nil
}

// Analyze scores one symbol without persisting anything.
func (s *AnalysisService) Analyze(ctx context.Context, symbol string, futures signal.FuturesSet, threshold float64) (domain.ScoringResult, error) {
	batch, err := s.runEphemeral(ctx, AnalysisRequest{Symbols: []string{symbol}, Futures: futures, Threshold: threshold})
	if err != nil {
		return domain.ScoringResult{}, err
	}
	if len(batch.Results) == 0 {
		return domain.ScoringResult{}, fmt.Errorf("analyze %s: %s", symbol, strings.Join(batch.Errors, "; "))
	}
	return batch.Results[0], nil
}

func (s *AnalysisService) runEphemeral(ctx context.Context, req AnalysisRequest) (domain.Batch, error) {
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.cfg.Threshold
	}
	symbols, err := s.resolveSymbols(ctx, req)
	if err != nil {
		return domain.Batch{}, err
	}
	batch := domain.Batch{Threshold: threshold}
	global := s.fetchGlobal(ctx, &batch)
	results, errs, err := s.scoreAll(ctx, symbols, req.Futures, global, threshold)
	if err != nil {
		return batch, err
	}
	for i, r := range results {
		if r != nil {
			batch.Results = append(batch.Results, *r)
		} else if errs[i] != "" {
			batch.Errors = append(batch.Errors, errs[i])
		}
	}
	return batch, nil
}

// Latest returns the most recent batch. Redis is read first, then the
// store. A batch finished in this process wins over an older shared copy,
// which happens when its store or cache write failed.
func (s *AnalysisService) Latest(ctx context.Context) (domain.Batch, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.latest")
	defer span.End()

	s.mu.RLock()
	local := s.latest
	s.mu.RUnlock()

	shared := s.sharedBatch(ctx)
	switch {
	case shared == nil && local == nil:
		return domain.Batch{}, ErrNoBatch
	case local == nil:
		return *shared, nil
	case shared == nil || local.FinishedAt.After(shared.FinishedAt):
		return *local, nil
	default:
		return *shared, nil
	}
}

func (s *AnalysisService) sharedBatch(ctx context.Context) *domain.Batch {
	if s.redis != nil {
		cached, err := s.getBatchCache(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("redis cache read error")
		}
		if cached != nil {
			return cached
		}
	}
	if s.store != nil {
		stored, err := s.store.LatestBatch(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("result store read error")
			return nil
		}
		return stored
	}
	return nil
}

type globalSnapshots struct {
	macro     domain.MacroSnapshot
	fearGreed *domain.FearGreed
	tvl       *domain.DefiTVL
}

// fetchGlobal reads the symbol-independent snapshots once per run.
func (s *AnalysisService) fetchGlobal(ctx context.Context, batch *domain.Batch) globalSnapshots {
	g := globalSnapshots{macro: domain.NeutralMacro()}
	if s.sources.Macro != nil {
		m, err := s.sources.Macro.Macro(ctx)
		if err != nil {
			batch.Errors = append(batch.Errors, "macro: "+err.Error())
		} else {
			g.macro = m
		}
	}
	if s.sources.FearGreed != nil {
		fg, err := s.sources.FearGreed.FearGreed(ctx)
		if err != nil {
			batch.Errors = append(batch.Errors, "fear_greed: "+err.Error())
		}
		g.fearGreed = fg
	}
	if s.sources.TVL != nil {
		tvl, err := s.sources.TVL.DefiTVL(ctx)
		if err != nil {
			batch.Errors = append(batch.Errors, "defi_tvl: "+err.Error())
		}
		g.tvl = tvl
	}
	return g
}

// scoreAll fans symbols out to at most cfg.Workers goroutines. Slot i of
// both returned slices belongs to symbols[i].
func (s *AnalysisService) scoreAll(
	ctx context.Context,
	symbols []string,
	futures signal.FuturesSet,
	global globalSnapshots,
	threshold float64,
) ([]*domain.ScoringResult, []string, error) {
	results := make([]*domain.ScoringResult, len(symbols))
	errs := make([]string, len(symbols))
	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup

dispatch:
	for i, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("symbol", symbol).Interface("panic", r).Bytes("stack", debug.Stack()).Msg("symbol analysis panicked")
					errs[i] = fmt.Sprintf("%s: panic: %v", symbol, r)
				}
			}()

			symCtx, cancel := context.WithTimeout(ctx, s.cfg.SymbolTimeout)
			defer cancel()
			res, err := s.scoreSymbol(symCtx, symbol, futures.Lookup(symbol), global, threshold)
			if err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("symbol analysis failed")
				errs[i] = fmt.Sprintf("%s: %v", symbol, err)
				return
			}
			results[i] = &res
		}(i, symbol)
	}
	wg.Wait()

	return results, errs, ctx.Err()
}

func (s *AnalysisService) scoreSymbol(
	ctx context.Context,
	symbol string,
	futures domain.FuturesFlow,
	global globalSnapshots,
	threshold float64,
) (domain.ScoringResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.score-symbol")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	social := domain.NeutralSocial()
	if s.sources.Social != nil {
		v, err := s.sources.Social.Social(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("social source error, using neutral snapshot")
		} else {
			social = v
		}
	}
	news := domain.NeutralNews()
	if s.sources.News != nil {
		v, err := s.sources.News.News(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("news source error, using neutral snapshot")
		} else {
			news = v
		}
	}

	// A source that ran into the symbol deadline has already degraded to its
	// neutral snapshot, so the symbol is still scored.
	res := signal.Analyze(symbol, signal.Inputs{
		Social:    social,
		News:      news,
		Futures:   futures,
		Macro:     global.macro,
		FearGreed: global.fearGreed,
		DefiTVL:   global.tvl,
	}, threshold)
	span.SetAttributes(attribute.String("signal", string(res.Signal)), attribute.Float64("net_score", res.NetScore))
	return res, nil
}

func (s *AnalysisService) resolveSymbols(ctx context.Context, req AnalysisRequest) ([]string, error) {
	var symbols []string
	switch {
	case len(req.Symbols) > 0:
		symbols = req.Symbols
	case req.Top > 0:
		if s.sources.Universe == nil {
			return nil, fmt.Errorf("top-%d universe: no universe source configured", req.Top)
		}
		top, err := s.sources.Universe.TopSymbols(ctx, req.Top)
		if err != nil {
			return nil, fmt.Errorf("resolve top-%d universe: %w", req.Top, err)
		}
		symbols = top
	default:
		symbols = req.Futures.Symbols
	}

	out := normalizeSymbols(symbols)
	if len(out) == 0 {
		return nil, signal.ErrNoSymbols
	}
	return out, nil
}

func normalizeSymbols(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, sym := range in {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// keep makes batch the latest one and hands it to the store, the cache and
// the publisher. Store and publish failures are appended to batch.Errors.
// A failed cache write drops the cached key so readers in other processes
// fall through to the store instead of the previous batch.
func (s *AnalysisService) keep(ctx context.Context, batch *domain.Batch) {
	if s.store != nil {
		if err := s.store.SaveBatch(ctx, *batch); err != nil {
			log.Error().Err(err).Str("run_id", batch.RunID).Msg("persist batch failed")
			batch.Errors = append(batch.Errors, "store: "+err.Error())
		}
	}
	if s.redis != nil {
		if err := s.setBatchCache(ctx, *batch); err != nil {
			log.Warn().Err(err).Str("run_id", batch.RunID).Msg("redis cache write error")
			if err := s.redis.Del(ctx, latestBatchKey).Err(); err != nil {
				log.Warn().Err(err).Msg("redis cache invalidate error")
			}
		}
	}
	if s.publisher != nil {
		err := s.publisher.PublishBatch(ctx, *batch)
		metrics.RecordPublish(len(batch.Results), err)
		if err != nil {
			log.Error().Err(err).Str("run_id", batch.RunID).Msg("publish batch failed")
			batch.Errors = append(batch.Errors, "publish: "+err.Error())
		}
	}

	latest := *batch
	s.mu.Lock()
	s.latest = &latest
	s.mu.Unlock()
}

func (s *AnalysisService) getBatchCache(ctx context.Context) (*domain.Batch, error) {
	val, err := s.redis.Get(ctx, latestBatchKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var batch domain.Batch
	if err := json.Unmarshal([]byte(val), &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *AnalysisService) setBatchCache(ctx context.Context, batch domain.Batch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, latestBatchKey, data, s.cfg.CacheTTL).Err()
}
