package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	redditBaseURL     = "https://www.reddit.com"
	defaultRedditUA   = "alpha-signal/1.0"
	defaultRedditSize = 25
)

type RedditProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
	limiter   *rate.Limiter
}

func NewRedditProvider(perMinute int, tracer trace.Tracer) *RedditProvider {
	return &RedditProvider{
		client:    &http.Client{Timeout: 20 * time.Second},
		baseURL:   redditBaseURL,
		userAgent: defaultRedditUA,
		tracer:    tracer,
		limiter:   newLimiter(perMinute),
	}
}

// SearchPosts returns posts from the last day in subreddit that mention symbol.
// Score and comment counts are exposed as votes.
func (p *RedditProvider) SearchPosts(ctx context.Context, subreddit, symbol string, limit int) ([]ContentItem, error) {
	ctx, span := p.tracer.Start(ctx, "reddit.search-posts")
	defer span.End()
	span.SetAttributes(attribute.String("subreddit", subreddit), attribute.String("symbol", symbol))

	subreddit = strings.TrimSpace(subreddit)
	if subreddit == "" {
		return nil, fmt.Errorf("subreddit is required")
	}
	if limit <= 0 {
		limit = defaultRedditSize
	}
	if limit > 100 {
		limit = 100
	}

	q := url.Values{}
	q.Set("q", strings.ToUpper(symbol))
	q.Set("restrict_sr", "1")
	q.Set("sort", "new")
	q.Set("t", "day")
	q.Set("limit", fmt.Sprint(limit))

	base := strings.TrimRight(p.baseURL, "/")
	u := fmt.Sprintf("%s/r/%s/search.json?%s", base, url.PathEscape(subreddit), q.Encode())

	var payload struct {
		Data struct {
			Children []struct {
				Data struct {
					ID          string  `json:"id"`
					Subreddit   string  `json:"subreddit"`
					Title       string  `json:"title"`
					SelfText    string  `json:"selftext"`
					Author      string  `json:"author"`
					CreatedUTC  float64 `json:"created_utc"`
					Permalink   string  `json:"permalink"`
					URL         string  `json:"url"`
					Ups         int     `json:"ups"`
					UpvoteRatio float64 `json:"upvote_ratio"`
					NumComments int     `json:"num_comments"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	headers := map[string]string{"User-Agent": p.userAgent}
	if err := getJSON(ctx, p.client, p.limiter, "reddit", u, headers, &payload); err != nil {
		span.RecordError(err)
		return nil, err
	}

	items := make([]ContentItem, 0, len(payload.Data.Children))
	for _, row := range payload.Data.Children {
		data := row.Data
		if strings.TrimSpace(data.ID) == "" || strings.TrimSpace(data.Title) == "" {
			continue
		}
		itemURL := strings.TrimSpace(data.URL)
		if permalink := strings.TrimSpace(data.Permalink); permalink != "" {
			itemURL = base + permalink
		}
		items = append(items, ContentItem{
			Source:       "reddit",
			SourceItemID: data.ID,
			Title:        sanitizeText(data.Title, 300),
			URL:          itemURL,
			Excerpt:      sanitizeText(data.SelfText, 420),
			Author:       sanitizeText(data.Author, 120),
			PublishedAt:  time.Unix(int64(data.CreatedUTC), 0).UTC(),
			Votes:        redditVotes(data.Ups, data.UpvoteRatio, data.NumComments),
			Metadata: map[string]any{
				"subreddit":    strings.TrimSpace(data.Subreddit),
				"num_comments": data.NumComments,
			},
		})
	}
	return items, nil
}

// redditVotes splits the net score back into up and down votes using the
// upvote ratio. Posts with more than 100 comments count as important.
func redditVotes(ups int, ratio float64, comments int) *Votes {
	if ups <= 0 || ratio <= 0 {
		return nil
	}
	total := float64(ups) / ratio
	v := &Votes{Positive: ups, Negative: int(math.Round(total)) - ups}
	if v.Negative < 0 {
		v.Negative = 0
	}
	if comments > 100 {
		v.Important = 1
	}
	return v
}
