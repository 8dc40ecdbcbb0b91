package marketintel

import (
	"math"
	"sort"
	"strings"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/provider"
)

const (
	hotNewsLimit        = 5
	highImpactThreshold = 7
	// voteWeight is the share of community votes in a headline's sentiment.
	voteWeight = 0.3
)

// Market-moving words. Short ones must match a whole word; the rest match
// as prefixes.
var (
	impactWords    = []string{"etf", "etfs", "sec", "ban", "hack"}
	impactPrefixes = []string{
		"hacked", "exploit", "lawsuit", "partnership", "listing", "delist",
		"approv", "halving", "upgrade", "bankrupt", "regulat",
	}
)

// ScoredItem pairs a fetched headline with its rating.
type ScoredItem struct {
	Item  provider.ContentItem
	Score HeadlineScore
}

// BuildImpact summarizes scored headlines. Per-item sentiment stays in
// [-1, 1]; AvgSentiment is rescaled to [0, 1] so 0.5 is neutral. With no
// items the neutral news snapshot is returned.
func BuildImpact(items []ScoredItem) domain.NewsImpact {
	if len(items) == 0 {
		return domain.NeutralNews()
	}

	out := domain.NewsImpact{ArticleCount24h: len(items)}
	hot := make([]rankedHeadline, 0, len(items))
	total := 0.0
	for _, row := range items {
		sentiment := itemSentiment(row)
		total += sentiment

		switch {
		case sentiment > 0.2:
			out.PositiveCount++
		case sentiment < -0.2:
			out.NegativeCount++
		default:
			out.NeutralCount++
		}

		impact := headlineImpact(row.Item, sentiment, row.Score)
		if impact >= highImpactThreshold {
			out.HighImpactCount++
		}
		hot = append(hot, rankedHeadline{
			item: domain.HotNewsItem{
				Headline:  row.Item.Title,
				Sentiment: sentiment,
				Impact:    impact,
				Source:    row.Item.Source,
				URL:       row.Item.URL,
			},
			publishedUnix: row.Item.PublishedAt.Unix(),
		})
	}
	out.AvgSentiment = clamp((total/float64(len(items))+1)/2, 0, 1)

	sort.SliceStable(hot, func(i, j int) bool {
		if hot[i].item.Impact != hot[j].item.Impact {
			return hot[i].item.Impact > hot[j].item.Impact
		}
		return hot[i].publishedUnix > hot[j].publishedUnix
	})
	if len(hot) > hotNewsLimit {
		hot = hot[:hotNewsLimit]
	}
	out.HotNews = make([]domain.HotNewsItem, len(hot))
	for i, h := range hot {
		out.HotNews[i] = h.item
	}
	return out
}

type rankedHeadline struct {
	item          domain.HotNewsItem
	publishedUnix int64
}

func itemSentiment(row ScoredItem) float64 {
	score := clamp(row.Score.Sentiment, -1, 1)
	if votes, ok := row.Item.Votes.Sentiment(); ok {
		score = (1-voteWeight)*score + voteWeight*votes
	}
	return score
}

// headlineImpact rates a headline 0..10. A model rating is taken as is;
// otherwise it is derived from sentiment strength, scorer confidence and
// market-moving keywords. "Important" votes add up to two points either way.
func headlineImpact(item provider.ContentItem, sentiment float64, score HeadlineScore) int {
	var v float64
	if score.ImpactRated {
		v = float64(score.Impact)
	} else {
		v = math.Abs(sentiment)*6 + clamp(score.Confidence, 0, 1)*2
		if hasImpactKeyword(strings.ToLower(item.Title + " " + item.Excerpt)) {
			v += 2
		}
	}
	if item.Votes != nil {
		v += math.Min(float64(item.Votes.Important), 2)
	}
	return int(math.Round(clamp(v, 0, 10)))
}

func hasImpactKeyword(text string) bool {
	words := wordSet(text)
	for _, w := range impactWords {
		if _, ok := words[w]; ok {
			return true
		}
	}
	for w := range words {
		for _, p := range impactPrefixes {
			if strings.HasPrefix(w, p) {
				return true
			}
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
