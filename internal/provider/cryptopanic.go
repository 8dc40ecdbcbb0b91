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

type CryptoPanicProvider struct {
	client  *http.Client
	baseURL string
	token   string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

func NewCryptoPanicProvider(baseURL, token string, perMinute int, tracer trace.Tracer) *CryptoPanicProvider {
	return &CryptoPanicProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		tracer:  tracer,
		limiter: newLimiter(perMinute),
	}
}

// FetchPosts returns recent news posts tagged with symbol, including votes.
func (p *CryptoPanicProvider) FetchPosts(ctx context.Context, symbol string) ([]ContentItem, error) {
	ctx, span := p.tracer.Start(ctx, "cryptopanic.fetch-posts")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	if err := requireKey("cryptopanic", p.token); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("auth_token", p.token)
	q.Set("currencies", strings.ToUpper(symbol))
	q.Set("kind", "news")
	q.Set("public", "true")

	var payload struct {
		Results []struct {
			ID          int64  `json:"id"`
			Title       string `json:"title"`
			URL         string `json:"url"`
			PublishedAt string `json:"published_at"`
			Source      struct {
				Title  string `json:"title"`
				Domain string `json:"domain"`
			} `json:"source"`
			Votes struct {
				Positive  int `json:"positive"`
				Negative  int `json:"negative"`
				Important int `json:"important"`
				Liked     int `json:"liked"`
				Disliked  int `json:"disliked"`
				Toxic     int `json:"toxic"`
			} `json:"votes"`
		} `json:"results"`
	}
	if err := getJSON(ctx, p.client, p.limiter, "cryptopanic", p.baseURL+"/posts/?"+q.Encode(), nil, &payload); err != nil {
		span.RecordError(err)
		return nil, err
	}

	items := make([]ContentItem, 0, len(payload.Results))
	for _, row := range payload.Results {
		title := sanitizeText(row.Title, 300)
		if title == "" {
			continue
		}
		publishedAt, _ := time.Parse(time.RFC3339, strings.TrimSpace(row.PublishedAt))
		items = append(items, ContentItem{
			Source:       "cryptopanic",
			SourceItemID: strconv.FormatInt(row.ID, 10),
			Title:        title,
			URL:          sanitizeText(row.URL, 500),
			Author:       sanitizeText(row.Source.Title, 120),
			PublishedAt:  publishedAt.UTC(),
			Votes: &Votes{
				Positive:  row.Votes.Positive + row.Votes.Liked,
				Negative:  row.Votes.Negative + row.Votes.Disliked + row.Votes.Toxic,
				Important: row.Votes.Important,
			},
			Metadata: map[string]any{"domain": row.Source.Domain},
		})
	}
	return items, nil
}

func requireKey(name, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%s credential not configured", name)
	}
	return nil
}
