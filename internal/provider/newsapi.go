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

type NewsAPIProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *rate.Limiter
	now     func() time.Time
}

func NewNewsAPIProvider(baseURL, apiKey string, perMinute int, tracer trace.Tracer) *NewsAPIProvider {
	return &NewsAPIProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: newLimiter(perMinute),
		now:     time.Now,
	}
}

// FetchArticles searches the last 24 hours of English articles mentioning
// the symbol or its coin name.
func (p *NewsAPIProvider) FetchArticles(ctx context.Context, symbol string) ([]ContentItem, error) {
	ctx, span := p.tracer.Start(ctx, "newsapi.fetch-articles")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	if err := requireKey("newsapi", p.apiKey); err != nil {
		return nil, err
	}

	query := strings.ToUpper(symbol)
	if id, ok := domain.CoinGeckoID[query]; ok {
		query = fmt.Sprintf("%s OR %q", query, strings.ReplaceAll(id, "-", " "))
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("from", p.now().UTC().Add(-24*time.Hour).Format(time.RFC3339))
	q.Set("sortBy", "publishedAt")
	q.Set("language", "en")
	q.Set("pageSize", "50")

	var payload struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Articles []struct {
			Source struct {
				Name string `json:"name"`
			} `json:"source"`
			Author      string `json:"author"`
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
		} `json:"articles"`
	}
	headers := map[string]string{"X-Api-Key": p.apiKey}
	if err := getJSON(ctx, p.client, p.limiter, "newsapi", p.baseURL+"/everything?"+q.Encode(), headers, &payload); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if payload.Status != "" && payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s", payload.Message)
	}

	items := make([]ContentItem, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		title := sanitizeText(a.Title, 300)
		if title == "" || title == "[Removed]" {
			continue
		}
		publishedAt, _ := time.Parse(time.RFC3339, strings.TrimSpace(a.PublishedAt))
		items = append(items, ContentItem{
			Source:       "newsapi",
			SourceItemID: sanitizeText(a.URL, 250),
			Title:        title,
			URL:          sanitizeText(a.URL, 500),
			Excerpt:      sanitizeText(a.Description, 420),
			Author:       sanitizeText(a.Author, 120),
			PublishedAt:  publishedAt.UTC(),
			Metadata:     map[string]any{"outlet": a.Source.Name},
		})
	}
	return items, nil
}
