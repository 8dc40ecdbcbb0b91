package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"alpha-signal/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	lunarCrushTweetType  = "tweet"
	lunarCrushRedditType = "reddit-post"
)

// LunarCrushProvider reads social metrics from the LunarCrush v4 API.
type LunarCrushProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

func NewLunarCrushProvider(baseURL, apiKey string, perMinute int, tracer trace.Tracer) *LunarCrushProvider {
	return &LunarCrushProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: newLimiter(perMinute),
	}
}

type lunarCoin struct {
	Data struct {
		GalaxyScore float64 `json:"galaxy_score"`
		AltRank     int     `json:"alt_rank"`
		Sentiment   float64 `json:"sentiment"`
	} `json:"data"`
}

type lunarTopic struct {
	Data struct {
		TypesCount      map[string]float64 `json:"types_count"`
		TypesSentiment  map[string]float64 `json:"types_sentiment"`
		Interactions24h float64            `json:"interactions_24h"`
		NumContributors float64            `json:"num_contributors"`
		NumPosts        float64            `json:"num_posts"`
	} `json:"data"`
}

type lunarSeries struct {
	Data []struct {
		Time      int64    `json:"time"`
		Sentiment *float64 `json:"sentiment"`
	} `json:"data"`
}

// Social combines the coin, topic and daily time-series endpoints. LunarCrush
// reports sentiment as percent positive; values are scaled to [0, 1].
func (p *LunarCrushProvider) Social(ctx context.Context, symbol string) (domain.SocialSentiment, error) {
	ctx, span := p.tracer.Start(ctx, "lunarcrush.social")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	var out domain.SocialSentiment
	sym := url.PathEscape(strings.ToUpper(symbol))

	var coin lunarCoin
	if err := p.get(ctx, fmt.Sprintf("%s/coins/%s/v1", p.baseURL, sym), &coin); err != nil {
		span.RecordError(err)
		return out, fmt.Errorf("lunarcrush coin %s: %w", symbol, err)
	}
	out.GalaxyScore = coin.Data.GalaxyScore
	out.AltRank = coin.Data.AltRank
	out.InfluencerSentiment = coin.Data.Sentiment / 100

	var topic lunarTopic
	if err := p.get(ctx, fmt.Sprintf("%s/topic/%s/v1", p.baseURL, url.PathEscape(strings.ToLower(symbol))), &topic); err != nil {
		span.RecordError(err)
		return out, fmt.Errorf("lunarcrush topic %s: %w", symbol, err)
	}
	t := topic.Data
	out.TwitterMentions = int(t.TypesCount[lunarCrushTweetType])
	out.RedditPosts = int(t.TypesCount[lunarCrushRedditType])
	out.TwitterSentiment = sentimentOr(t.TypesSentiment, lunarCrushTweetType, coin.Data.Sentiment) / 100
	out.RedditSentiment = sentimentOr(t.TypesSentiment, lunarCrushRedditType, coin.Data.Sentiment) / 100
	out.SocialVolume = t.Interactions24h
	if t.NumPosts > 0 {
		out.EngagementRate = min(1, t.NumContributors/t.NumPosts)
	}

	var series lunarSeries
	seriesURL := fmt.Sprintf("%s/coins/%s/time-series/v2?bucket=day&interval=1w", p.baseURL, sym)
	if err := p.get(ctx, seriesURL, &series); err == nil {
		out.SentimentChange24h = sentimentChange(series)
	} else {
		span.RecordError(err)
	}

	return out, nil
}

func (p *LunarCrushProvider) get(ctx context.Context, u string, out any) error {
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	return getJSON(ctx, p.client, p.limiter, "lunarcrush", u, headers, out)
}

func sentimentOr(m map[string]float64, key string, fallback float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

// sentimentChange is the difference between the last two daily sentiment
// readings, scaled to [-1, 1].
func sentimentChange(s lunarSeries) float64 {
	var readings []float64
	for _, row := range s.Data {
		if row.Sentiment != nil {
			readings = append(readings, *row.Sentiment)
		}
	}
	if len(readings) < 2 {
		return 0
	}
	return (readings[len(readings)-1] - readings[len(readings)-2]) / 100
}
