package source

import (
	"context"
	"time"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/metrics"

	"github.com/rs/zerolog/log"
	cb "github.com/sony/gobreaker"
)

type BreakerOptions struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

func (o BreakerOptions) withDefaults() BreakerOptions {
	if o.ConsecutiveFailures == 0 {
		o.ConsecutiveFailures = 3
	}
	if o.OpenTimeout <= 0 {
		o.OpenTimeout = 60 * time.Second
	}
	return o
}

type guard struct {
	name string
	cb   *cb.CircuitBreaker
}

func newGuard(name string, opts BreakerOptions) *guard {
	opts = opts.withDefaults()
	st := cb.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = opts.OpenTimeout
	st.ReadyToTrip = func(counts cb.Counts) bool {
		return counts.ConsecutiveFailures >= opts.ConsecutiveFailures
	}
	st.OnStateChange = func(name string, from, to cb.State) {
		log.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).Msg("source breaker state changed")
	}
	return &guard{name: name, cb: cb.NewCircuitBreaker(st)}
}

func (g *guard) execute(ctx context.Context, fn func() (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	v, err := g.cb.Execute(fn)
	metrics.RecordSourceLatency(g.name, time.Since(start))
	return v, err
}

func (g *guard) fallback(err error, symbol string) {
	metrics.RecordFallback(g.name)
	ev := log.Warn().Err(err).Str("source", g.name)
	if symbol != "" {
		ev = ev.Str("symbol", symbol)
	}
	ev.Msg("live source failed, using neutral snapshot")
}

type guardedSocial struct {
	src   SocialSource
	guard *guard
}

// GuardSocial never returns an error: failures yield the neutral snapshot.
func GuardSocial(src SocialSource, opts BreakerOptions) SocialSource {
	return &guardedSocial{src: src, guard: newGuard(domain.ComponentSocial, opts)}
}

func (g *guardedSocial) Social(ctx context.Context, symbol string) (domain.SocialSentiment, error) {
	v, err := g.guard.execute(ctx, func() (any, error) { return g.src.Social(ctx, symbol) })
	if err != nil {
		g.guard.fallback(err, symbol)
		return domain.NeutralSocial(), nil
	}
	return v.(domain.SocialSentiment), nil
}

type guardedNews struct {
	src   NewsSource
	guard *guard
}

func GuardNews(src NewsSource, opts BreakerOptions) NewsSource {
	return &guardedNews{src: src, guard: newGuard(domain.ComponentNews, opts)}
}

func (g *guardedNews) News(ctx context.Context, symbol string) (domain.NewsImpact, error) {
	v, err := g.guard.execute(ctx, func() (any, error) { return g.src.News(ctx, symbol) })
	if err != nil {
		g.guard.fallback(err, symbol)
		return domain.NeutralNews(), nil
	}
	return v.(domain.NewsImpact), nil
}

type guardedMacro struct {
	src   MacroSource
	guard *guard
}

func GuardMacro(src MacroSource, opts BreakerOptions) MacroSource {
	return &guardedMacro{src: src, guard: newGuard(domain.ComponentMacro, opts)}
}

func (g *guardedMacro) Macro(ctx context.Context) (domain.MacroSnapshot, error) {
	v, err := g.guard.execute(ctx, func() (any, error) { return g.src.Macro(ctx) })
	if err != nil {
		g.guard.fallback(err, "")
		return domain.NeutralMacro(), nil
	}
	return v.(domain.MacroSnapshot), nil
}

type guardedFearGreed struct {
	src   FearGreedSource
	guard *guard
}

// GuardFearGreed reports a failed fetch as unavailable (nil, nil).
func GuardFearGreed(src FearGreedSource, opts BreakerOptions) FearGreedSource {
	return &guardedFearGreed{src: src, guard: newGuard(domain.ComponentFearGreed, opts)}
}

func (g *guardedFearGreed) FearGreed(ctx context.Context) (*domain.FearGreed, error) {
	v, err := g.guard.execute(ctx, func() (any, error) { return g.src.FearGreed(ctx) })
	if err != nil {
		g.guard.fallback(err, "")
		return nil, nil
	}
	return v.(*domain.FearGreed), nil
}

type guardedTVL struct {
	src   TVLSource
	guard *guard
}

func GuardTVL(src TVLSource, opts BreakerOptions) TVLSource {
	return &guardedTVL{src: src, guard: newGuard(domain.ComponentDefiTVL, opts)}
}

func (g *guardedTVL) DefiTVL(ctx context.Context) (*domain.DefiTVL, error) {
	v, err := g.guard.execute(ctx, func() (any, error) { return g.src.DefiTVL(ctx) })
	if err != nil {
		g.guard.fallback(err, "")
		return nil, nil
	}
	return v.(*domain.DefiTVL), nil
}

type guardedUniverse struct {
	src      UniverseSource
	fallback UniverseSource
	guard    *guard
}

// GuardUniverse answers from fallback when the live universe fails.
func GuardUniverse(src, fallback UniverseSource, opts BreakerOptions) UniverseSource {
	return &guardedUniverse{src: src, fallback: fallback, guard: newGuard("universe", opts)}
}

func (g *guardedUniverse) TopSymbols(ctx context.Context, n int) ([]string, error) {
	v, err := g.guard.execute(ctx, func() (any, error) { return g.src.TopSymbols(ctx, n) })
	if err == nil {
		if symbols := v.([]string); len(symbols) > 0 {
			return symbols, nil
		}
		err = ErrUnavailable
	}
	g.guard.fallback(err, "")
	return g.fallback.TopSymbols(ctx, n)
}
