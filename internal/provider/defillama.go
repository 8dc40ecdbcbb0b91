package provider

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"alpha-signal/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const defiLlamaBaseURL = "https://api.llama.fi"

type DefiLlamaProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewDefiLlamaProvider falls back to the public API when baseURL is empty.
func NewDefiLlamaProvider(baseURL string, perMinute int, tracer trace.Tracer) *DefiLlamaProvider {
	if baseURL == "" {
		baseURL = defiLlamaBaseURL
	}
	return &DefiLlamaProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: baseURL,
		tracer:  tracer,
		limiter: newLimiter(perMinute),
	}
}

// DefiTVL returns total DeFi TVL across chains with 24h and 7d percentage change.
func (p *DefiLlamaProvider) DefiTVL(ctx context.Context) (*domain.DefiTVL, error) {
	ctx, span := p.tracer.Start(ctx, "defillama.historical-tvl")
	defer span.End()

	var points []struct {
		Date int64   `json:"date"`
		TVL  float64 `json:"tvl"`
	}
	url := strings.TrimRight(p.baseURL, "/") + "/v2/historicalChainTvl"
	if err := getJSON(ctx, p.client, p.limiter, "defillama", url, nil, &points); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("defillama returned %d tvl points", len(points))
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	last := len(points) - 1
	out := &domain.DefiTVL{
		TotalTVL:     points[last].TVL,
		Change24hPct: pctChange(points[last-1].TVL, points[last].TVL),
	}
	if last >= 7 {
		out.Change7dPct = pctChange(points[last-7].TVL, points[last].TVL)
	}
	span.SetAttributes(attribute.Float64("defi.tvl", out.TotalTVL))
	return out, nil
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}
