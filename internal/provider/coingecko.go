package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	coingeckoBaseURL  = "https://api.coingecko.com/api/v3"
	coingeckoPageSize = 250
	coingeckoMaxPages = 2
)

// CoinGeckoProvider resolves the analysis universe from market-cap rankings.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewCoinGeckoProvider is limited to 8 requests per minute to stay inside
// the free tier.
func NewCoinGeckoProvider(baseURL string, tracer trace.Tracer) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		tracer:  tracer,
		limiter: newLimiter(8),
	}
}

// TopSymbols returns up to n upper-cased symbols ordered by market cap,
// reading at most two pages of 250.
func (p *CoinGeckoProvider) TopSymbols(ctx context.Context, n int) ([]string, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.top-symbols")
	defer span.End()
	span.SetAttributes(attribute.Int("top_n", n))

	if n <= 0 {
		return nil, fmt.Errorf("top n must be positive")
	}

	seen := make(map[string]struct{}, n)
	symbols := make([]string, 0, n)
	for page := 1; page <= coingeckoMaxPages && len(symbols) < n; page++ {
		q := url.Values{}
		q.Set("vs_currency", "usd")
		q.Set("order", "market_cap_desc")
		q.Set("per_page", strconv.Itoa(coingeckoPageSize))
		q.Set("page", strconv.Itoa(page))

		var rows []struct {
			Symbol string `json:"symbol"`
		}
		u := strings.TrimRight(p.baseURL, "/") + "/coins/markets?" + q.Encode()
		if err := getJSON(ctx, p.client, p.limiter, "coingecko", u, nil, &rows); err != nil {
			if len(symbols) > 0 {
				break
			}
			span.RecordError(err)
			return nil, fmt.Errorf("fetch markets page %d: %w", page, err)
		}
		for _, row := range rows {
			sym := strings.ToUpper(strings.TrimSpace(row.Symbol))
			if sym == "" {
				continue
			}
			if _, dup := seen[sym]; dup {
				continue
			}
			seen[sym] = struct{}{}
			symbols = append(symbols, sym)
			if len(symbols) == n {
				break
			}
		}
		if len(rows) < coingeckoPageSize {
			break
		}
	}
	return symbols, nil
}
