package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"alpha-signal/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// FREDSeries names the FRED series behind each macro indicator.
type FREDSeries struct {
	VIX    string
	DXY    string
	Yield  string
	SP500  string
	Nasdaq string
}

func DefaultFREDSeries() FREDSeries {
	return FREDSeries{
		VIX:    "VIXCLS",
		DXY:    "DTWEXBGS",
		Yield:  "DGS10",
		SP500:  "SP500",
		Nasdaq: "NASDAQCOM",
	}
}

const (
	// trendLookback is the number of observations compared for a trend.
	trendLookback = 5
	fredFetchSize = 15
)

// trendBands are the relative moves treated as flat, per indicator.
var trendBands = map[string]float64{
	"vix":   0.05,
	"dxy":   0.005,
	"yield": 0.01,
}

type FREDProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	series  FREDSeries
	tracer  trace.Tracer
	limiter *rate.Limiter
}

func NewFREDProvider(baseURL, apiKey string, series FREDSeries, perMinute int, tracer trace.Tracer) *FREDProvider {
	return &FREDProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		series:  series,
		tracer:  tracer,
		limiter: newLimiter(perMinute),
	}
}

// Macro builds a snapshot from the latest observations of each series.
// Risk appetite is derived from VIX and equity moves.
func (p *FREDProvider) Macro(ctx context.Context) (domain.MacroSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "fred.macro")
	defer span.End()

	var out domain.MacroSnapshot
	if err := requireKey("fred", p.apiKey); err != nil {
		return out, err
	}

	vix, err := p.observations(ctx, p.series.VIX)
	if err != nil {
		span.RecordError(err)
		return out, err
	}
	dxy, err := p.observations(ctx, p.series.DXY)
	if err != nil {
		span.RecordError(err)
		return out, err
	}
	yield, err := p.observations(ctx, p.series.Yield)
	if err != nil {
		span.RecordError(err)
		return out, err
	}
	sp, err := p.observations(ctx, p.series.SP500)
	if err != nil {
		span.RecordError(err)
		return out, err
	}
	nq, err := p.observations(ctx, p.series.Nasdaq)
	if err != nil {
		span.RecordError(err)
		return out, err
	}

	out.VIX = vix[0]
	out.VIXTrend = classifyTrend(vix, trendBands["vix"])
	out.DXY = dxy[0]
	out.DXYTrend = classifyTrend(dxy, trendBands["dxy"])
	out.Treasury10Y = yield[0]
	out.YieldTrend = classifyTrend(yield, trendBands["yield"])
	out.SP500ChangePct = dailyChangePct(sp)
	out.NasdaqChangePct = dailyChangePct(nq)
	out.RiskAppetite = deriveRiskAppetite(out)

	span.SetAttributes(
		attribute.Float64("macro.vix", out.VIX),
		attribute.String("macro.risk_appetite", string(out.RiskAppetite)),
	)
	return out, nil
}

// observations returns valid values newest first. FRED marks missing days with ".".
func (p *FREDProvider) observations(ctx context.Context, seriesID string) ([]float64, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", p.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", strconv.Itoa(fredFetchSize))

	var payload struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := getJSON(ctx, p.client, p.limiter, "fred", p.baseURL+"/series/observations?"+q.Encode(), nil, &payload); err != nil {
		return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
	}

	values := make([]float64, 0, len(payload.Observations))
	for _, o := range payload.Observations {
		v, err := strconv.ParseFloat(strings.TrimSpace(o.Value), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("fred series %s has no observations", seriesID)
	}
	return values, nil
}

// classifyTrend compares the newest value to the one trendLookback
// observations earlier. Moves within band (relative) are FLAT.
func classifyTrend(newestFirst []float64, band float64) domain.Trend {
	if len(newestFirst) < 2 {
		return domain.TrendFlat
	}
	back := min(trendLookback, len(newestFirst)-1)
	prev := newestFirst[back]
	if prev == 0 {
		return domain.TrendFlat
	}
	change := (newestFirst[0] - prev) / math.Abs(prev)
	switch {
	case change > band:
		return domain.TrendUp
	case change < -band:
		return domain.TrendDown
	default:
		return domain.TrendFlat
	}
}

func dailyChangePct(newestFirst []float64) float64 {
	if len(newestFirst) < 2 || newestFirst[1] == 0 {
		return 0
	}
	return (newestFirst[0] - newestFirst[1]) / newestFirst[1] * 100
}

func deriveRiskAppetite(m domain.MacroSnapshot) domain.RiskAppetite {
	switch {
	case m.VIX > 25 || (m.SP500ChangePct < -1 && m.NasdaqChangePct < -1):
		return domain.RiskAppetiteLow
	case m.VIX < 15 && m.SP500ChangePct >= 0:
		return domain.RiskAppetiteHigh
	default:
		return domain.RiskAppetiteMedium
	}
}
