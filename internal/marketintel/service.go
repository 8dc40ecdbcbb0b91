package marketintel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/provider"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PostReader interface {
	FetchPosts(ctx context.Context, symbol string) ([]provider.ContentItem, error)
}

type ArticleReader interface {
	FetchArticles(ctx context.Context, symbol string) ([]provider.ContentItem, error)
}

type RSSReader interface {
	FetchFeed(ctx context.Context, feedURL string, maxItems int) ([]provider.ContentItem, error)
}

type RedditReader interface {
	SearchPosts(ctx context.Context, subreddit, symbol string, limit int) ([]provider.ContentItem, error)
}

type Config struct {
	NewsFeeds         []string
	RedditSubs        []string
	RedditPostLimit   int
	NewsFeedItemLimit int
	ScoringBatchSize  int
	// Window bounds how old a headline may be. Undated items are kept.
	Window time.Duration
	// FeedTTL is how long a fetched RSS feed is reused across symbols.
	FeedTTL time.Duration
}

// Readers holds the content providers. Any of them may be nil.
type Readers struct {
	CryptoPanic PostReader
	NewsAPI     ArticleReader
	RSS         RSSReader
	Reddit      RedditReader
}

// Service builds per-symbol news impact from headlines and community posts.
type Service struct {
	tracer  trace.Tracer
	scorer  *Scorer
	readers Readers
	cfg     Config
	now     func() time.Time

	mu    sync.Mutex
	feeds map[string]cachedFeed
}

type cachedFeed struct {
	items     []provider.ContentItem
	fetchedAt time.Time
}

func NewService(tracer trace.Tracer, scorer *Scorer, readers Readers, cfg Config) *Service {
	if cfg.RedditPostLimit <= 0 {
		cfg.RedditPostLimit = 40
	}
	if cfg.NewsFeedItemLimit <= 0 {
		cfg.NewsFeedItemLimit = 40
	}
	if cfg.ScoringBatchSize <= 0 {
		cfg.ScoringBatchSize = 24
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	if cfg.FeedTTL <= 0 {
		cfg.FeedTTL = 5 * time.Minute
	}
	if scorer == nil {
		scorer = NewScorer(nil, cfg.ScoringBatchSize)
	}
	return &Service{
		tracer:  tracer,
		scorer:  scorer,
		readers: readers,
		cfg:     cfg,
		now:     time.Now,
		feeds:   make(map[string]cachedFeed),
	}
}

// News collects the last day of headlines mentioning symbol, scores them and
// summarizes the result. It fails only when every configured reader failed,
// so a caller can fall back to a neutral snapshot.
func (s *Service) News(ctx context.Context, symbol string) (domain.NewsImpact, error) {
	ctx, span := s.tracer.Start(ctx, "marketintel.news")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	items, errs, attempted := s.collect(ctx, symbol)
	if attempted == 0 {
		return domain.NewsImpact{}, fmt.Errorf("no news readers configured")
	}
	if len(errs) == attempted {
		err := errors.Join(errs...)
		span.RecordError(err)
		return domain.NewsImpact{}, fmt.Errorf("news for %s: %w", symbol, err)
	}
	for _, err := range errs {
		log.Debug().Err(err).Str("symbol", symbol).Msg("news reader failed")
	}

	items = s.recent(dedupe(items))
	headlines := make([]Headline, len(items))
	for i, item := range items {
		headlines[i] = Headline{Title: item.Title, Excerpt: item.Excerpt}
	}
	scores := s.scorer.Score(ctx, headlines)

	scored := make([]ScoredItem, len(items))
	for i, item := range items {
		scored[i] = ScoredItem{Item: item, Score: scores[i]}
	}
	span.SetAttributes(attribute.Int("news.items", len(scored)))
	return BuildImpact(scored), nil
}

func (s *Service) collect(ctx context.Context, symbol string) ([]provider.ContentItem, []error, int) {
	var (
		items     []provider.ContentItem
		errs      []error
		attempted int
	)
	record := func(name string, rows []provider.ContentItem, err error) {
		attempted++
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		items = append(items, rows...)
	}

	if s.readers.CryptoPanic != nil {
		rows, err := s.readers.CryptoPanic.FetchPosts(ctx, symbol)
		record("cryptopanic", rows, err)
	}
	if s.readers.NewsAPI != nil {
		rows, err := s.readers.NewsAPI.FetchArticles(ctx, symbol)
		record("newsapi", rows, err)
	}
	if s.readers.RSS != nil {
		for _, feed := range s.cfg.NewsFeeds {
			rows, err := s.feed(ctx, feed)
			record("rss:"+feed, filterMentions(symbol, rows), err)
		}
	}
	if s.readers.Reddit != nil {
		for _, sub := range s.cfg.RedditSubs {
			rows, err := s.readers.Reddit.SearchPosts(ctx, sub, symbol, s.cfg.RedditPostLimit)
			record("reddit:"+sub, rows, err)
		}
	}
	return items, errs, attempted
}

// feed returns a cached copy of an RSS feed while it is fresher than FeedTTL.
func (s *Service) feed(ctx context.Context, feedURL string) ([]provider.ContentItem, error) {
	s.mu.Lock()
	cached, ok := s.feeds[feedURL]
	s.mu.Unlock()
	if ok && s.now().Sub(cached.fetchedAt) < s.cfg.FeedTTL {
		return cached.items, nil
	}

	rows, err := s.readers.RSS.FetchFeed(ctx, feedURL, s.cfg.NewsFeedItemLimit)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.feeds[feedURL] = cachedFeed{items: rows, fetchedAt: s.now()}
	s.mu.Unlock()
	return rows, nil
}

func (s *Service) recent(items []provider.ContentItem) []provider.ContentItem {
	cutoff := s.now().Add(-s.cfg.Window)
	out := items[:0]
	for _, item := range items {
		if !item.PublishedAt.IsZero() && item.PublishedAt.Before(cutoff) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func filterMentions(symbol string, rows []provider.ContentItem) []provider.ContentItem {
	out := make([]provider.ContentItem, 0, len(rows))
	for _, row := range rows {
		if MentionsSymbol(symbol, row.Title, row.Excerpt, row.Metadata) {
			out = append(out, row)
		}
	}
	return out
}

// dedupe drops repeated stories, keyed by URL or, failing that, title.
func dedupe(items []provider.ContentItem) []provider.ContentItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]provider.ContentItem, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.URL))
		if key == "" {
			key = strings.ToLower(strings.TrimSpace(item.Title))
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
