package source

import (
	"fmt"
	"time"

	"alpha-signal/internal/config"
	"alpha-signal/internal/domain"
	"alpha-signal/internal/marketintel"
	"alpha-signal/internal/provider"

	"go.opentelemetry.io/otel/trace"
)

// Build selects one source per category. A category whose credential is
// missing, or every category when SampleOnly is set, is served from the
// embedded sample. Live sources are wrapped in guards and never fail.
func Build(cfg *config.Config, tracer trace.Tracer) (Set, error) {
	sample, err := NewSample()
	if err != nil {
		return Set{}, fmt.Errorf("load sample source: %w", err)
	}

	src := cfg.Sources
	opts := BreakerOptions{ConsecutiveFailures: src.BreakerFailures, OpenTimeout: src.BreakerTimeout}
	set := Set{
		Social:    sample,
		News:      sample,
		Macro:     sample,
		FearGreed: sample,
		TVL:       sample,
		Universe:  sample,
		Modes: map[string]string{
			domain.ComponentSocial:    ModeSample,
			domain.ComponentNews:      ModeSample,
			domain.ComponentMacro:     ModeSample,
			domain.ComponentFearGreed: ModeSample,
			domain.ComponentDefiTVL:   ModeSample,
			"universe":                ModeSample,
		},
	}

	if src.SocialLive() {
		lc := provider.NewLunarCrushProvider(src.LunarCrushBaseURL, src.LunarCrushAPIKey, src.RateLimitPerMin, tracer)
		set.Social = GuardSocial(lc, opts)
		set.Modes[domain.ComponentSocial] = ModeLive
	}

	if src.NewsLive() {
		set.News = GuardNews(newsService(cfg, tracer), opts)
		set.Modes[domain.ComponentNews] = ModeLive
	}

	if src.MacroLive() {
		series := provider.FREDSeries{
			VIX:    src.FREDVIXSeries,
			DXY:    src.FREDDXYSeries,
			Yield:  src.FREDYieldSeries,
			SP500:  src.FREDSP500Series,
			Nasdaq: src.FREDNasdaqSeries,
		}
		fred := provider.NewFREDProvider(src.FREDBaseURL, src.FREDAPIKey, series, src.RateLimitPerMin, tracer)
		set.Macro = GuardMacro(fred, opts)
		set.Modes[domain.ComponentMacro] = ModeLive
	}

	// The auxiliaries and the universe need no credentials.
	switch {
	case !src.FearGreedEnabled:
		set.FearGreed = nil
		set.Modes[domain.ComponentFearGreed] = ModeDisabled
	case !src.SampleOnly:
		set.FearGreed = GuardFearGreed(provider.NewFearGreedProvider(tracer), opts)
		set.Modes[domain.ComponentFearGreed] = ModeLive
	}

	switch {
	case !src.DefiTVLEnabled:
		set.TVL = nil
		set.Modes[domain.ComponentDefiTVL] = ModeDisabled
	case !src.SampleOnly:
		set.TVL = GuardTVL(provider.NewDefiLlamaProvider(src.DefiLlamaBaseURL, src.RateLimitPerMin, tracer), opts)
		set.Modes[domain.ComponentDefiTVL] = ModeLive
	}

	if !src.SampleOnly {
		set.Universe = GuardUniverse(provider.NewCoinGeckoProvider(src.CoinGeckoBaseURL, tracer), sample, opts)
		set.Modes["universe"] = ModeLive
	}

	return set, nil
}

func newsService(cfg *config.Config, tracer trace.Tracer) *marketintel.Service {
	src := cfg.Sources
	var readers marketintel.Readers
	if src.CryptoPanicToken != "" {
		readers.CryptoPanic = provider.NewCryptoPanicProvider(src.CryptoPanicBaseURL, src.CryptoPanicToken, src.RateLimitPerMin, tracer)
	}
	if src.NewsAPIKey != "" {
		readers.NewsAPI = provider.NewNewsAPIProvider(src.NewsAPIBaseURL, src.NewsAPIKey, src.RateLimitPerMin, tracer)
	}
	if len(src.NewsFeeds) > 0 {
		readers.RSS = provider.NewRSSProvider(src.RateLimitPerMin, tracer)
	}
	if len(src.RedditSubreddits) > 0 {
		readers.Reddit = provider.NewRedditProvider(src.RateLimitPerMin, tracer)
	}

	var llm marketintel.BatchLLMScorer
	// A nil *OpenAIScorer must not become a non-nil interface.
	if s := marketintel.NewOpenAIScorer(cfg.OpenAI.APIKey, cfg.OpenAI.Model); s != nil {
		llm = s
	}

	return marketintel.NewService(tracer, marketintel.NewScorer(llm, 24), readers, marketintel.Config{
		NewsFeeds:  src.NewsFeeds,
		RedditSubs: src.RedditSubreddits,
		Window:     24 * time.Hour,
	})
}
