package provider

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// RSSProvider reads RSS 2.0 and Atom feeds.
type RSSProvider struct {
	client  *http.Client
	tracer  trace.Tracer
	limiter *rate.Limiter
}

func NewRSSProvider(perMinute int, tracer trace.Tracer) *RSSProvider {
	return &RSSProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		tracer:  tracer,
		limiter: newLimiter(perMinute),
	}
}

type feedEntry struct {
	title, link, summary, id, author, published string
}

type rssDoc struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			GUID        string `xml:"guid"`
			PubDate     string `xml:"pubDate"`
			Creator     string `xml:"creator"`
			Author      string `xml:"author"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDoc struct {
	Title   string `xml:"title"`
	Entries []struct {
		Title string `xml:"title"`
		Link  []struct {
			Href string `xml:"href,attr"`
			Rel  string `xml:"rel,attr"`
		} `xml:"link"`
		Summary   string `xml:"summary"`
		Content   string `xml:"content"`
		ID        string `xml:"id"`
		Updated   string `xml:"updated"`
		Published string `xml:"published"`
		Author    struct {
			Name string `xml:"name"`
		} `xml:"author"`
	} `xml:"entry"`
}

func (p *RSSProvider) FetchFeed(ctx context.Context, feedURL string, maxItems int) ([]ContentItem, error) {
	ctx, span := p.tracer.Start(ctx, "rss.fetch-feed")
	defer span.End()
	span.SetAttributes(attribute.String("feed_url", feedURL))

	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, fmt.Errorf("feed url is required")
	}
	if maxItems <= 0 {
		maxItems = 40
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("rss fetch error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	channel, entries, err := parseFeed(body)
	if err != nil {
		return nil, err
	}

	items := make([]ContentItem, 0, min(maxItems, len(entries)))
	for _, e := range entries {
		if len(items) >= maxItems {
			break
		}
		title := sanitizeText(e.title, 300)
		if title == "" {
			continue
		}
		publishedAt := parseFeedDate(e.published)
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		sourceID := sanitizeText(e.id, 250)
		if sourceID == "" {
			sourceID = sanitizeText(e.link, 250)
		}
		if sourceID == "" {
			h := sha1.Sum([]byte(title + "|" + publishedAt.Format(time.RFC3339Nano)))
			sourceID = hex.EncodeToString(h[:])
		}

		items = append(items, ContentItem{
			Source:       "rss",
			SourceItemID: sourceID,
			Title:        title,
			URL:          sanitizeText(e.link, 500),
			Excerpt:      sanitizeText(htmlStrip(e.summary), 420),
			Author:       sanitizeText(e.author, 120),
			PublishedAt:  publishedAt.UTC(),
			Metadata: map[string]any{
				"feed_url": feedURL,
				"channel":  sanitizeText(channel, 120),
			},
		})
	}

	return items, nil
}

// parseFeed accepts RSS first and falls back to Atom.
func parseFeed(body []byte) (string, []feedEntry, error) {
	var rss rssDoc
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		entries := make([]feedEntry, 0, len(rss.Channel.Items))
		for _, row := range rss.Channel.Items {
			author := row.Creator
			if strings.TrimSpace(author) == "" {
				author = row.Author
			}
			entries = append(entries, feedEntry{
				title:     row.Title,
				link:      row.Link,
				summary:   row.Description,
				id:        row.GUID,
				author:    author,
				published: row.PubDate,
			})
		}
		return rss.Channel.Title, entries, nil
	}

	var atom atomDoc
	if err := xml.Unmarshal(body, &atom); err != nil {
		return "", nil, fmt.Errorf("decode feed payload: %w", err)
	}
	entries := make([]feedEntry, 0, len(atom.Entries))
	for _, row := range atom.Entries {
		link := ""
		for _, l := range row.Link {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		summary := row.Summary
		if strings.TrimSpace(summary) == "" {
			summary = row.Content
		}
		published := row.Published
		if strings.TrimSpace(published) == "" {
			published = row.Updated
		}
		entries = append(entries, feedEntry{
			title:     row.Title,
			link:      link,
			summary:   summary,
			id:        row.ID,
			author:    row.Author.Name,
			published: published,
		})
	}
	return atom.Title, entries, nil
}

func parseFeedDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func htmlStrip(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	var b strings.Builder
	inside := false
	for _, r := range in {
		switch r {
		case '<':
			inside = true
			continue
		case '>':
			inside = false
			continue
		}
		if !inside {
			b.WriteRune(r)
		}
	}
	return b.String()
}
