package marketintel

import (
	"testing"
	"time"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(title string, score, confidence float64, votes *provider.Votes, published time.Time) ScoredItem {
	return ScoredItem{
		Item:  provider.ContentItem{Source: "test", Title: title, Votes: votes, PublishedAt: published},
		Score: HeadlineScore{Sentiment: score, Confidence: confidence},
	}
}

func TestBuildImpactEmptyIsNeutral(t *testing.T) {
	assert.Equal(t, domain.NeutralNews(), BuildImpact(nil))
}

func TestBuildImpactCountsAndAverage(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	impact := BuildImpact([]ScoredItem{
		scored("ETF approval lifts BTC", 1.0, 1.0, nil, now),
		scored("Exchange hacked", -1.0, 1.0, nil, now.Add(-time.Hour)),
		scored("Weekly recap", 0, 0.25, nil, now),
	})

	assert.Equal(t, 3, impact.ArticleCount24h)
	assert.Equal(t, 1, impact.PositiveCount)
	assert.Equal(t, 1, impact.NegativeCount)
	assert.Equal(t, 1, impact.NeutralCount)
	assert.InDelta(t, 0.5, impact.AvgSentiment, 1e-9)
	// 6 + 2 + 2 keyword bonus = 10 for both strong headlines.
	assert.Equal(t, 2, impact.HighImpactCount)

	require.Len(t, impact.HotNews, 3)
	assert.Equal(t, "ETF approval lifts BTC", impact.HotNews[0].Headline)
	assert.Equal(t, 10, impact.HotNews[0].Impact)
	assert.Equal(t, "Exchange hacked", impact.HotNews[1].Headline)
	assert.Equal(t, "Weekly recap", impact.HotNews[2].Headline)
	assert.Equal(t, 1, impact.HotNews[2].Impact)
}

func TestBuildImpactBlendsVotes(t *testing.T) {
	impact := BuildImpact([]ScoredItem{
		scored("Quiet day", 0, 0.5, &provider.Votes{Positive: 10, Important: 5}, time.Time{}),
	})
	require.Len(t, impact.HotNews, 1)
	assert.InDelta(t, 0.3, impact.HotNews[0].Sentiment, 1e-9)
	assert.Equal(t, 1, impact.PositiveCount)
	// 0.3*6 + 0.5*2 + 2 important votes = 4.8
	assert.Equal(t, 5, impact.HotNews[0].Impact)
}

func TestBuildImpactKeepsFiveHotItems(t *testing.T) {
	items := make([]ScoredItem, 8)
	for i := range items {
		items[i] = scored("story", 0.1*float64(i), 0.5, nil, time.Time{})
	}
	impact := BuildImpact(items)
	require.Len(t, impact.HotNews, hotNewsLimit)
	got := make([]int, len(impact.HotNews))
	for i, h := range impact.HotNews {
		got[i] = h.Impact
	}
	assert.Equal(t, []int{5, 5, 4, 3, 3}, got)
}

func TestHasImpactKeyword(t *testing.T) {
	assert.True(t, hasImpactKeyword("sec sues exchange"))
	assert.True(t, hasImpactKeyword("regulators weigh rules"))
	assert.False(t, hasImpactKeyword("second quarter banking results"))
}

func TestBuildImpactUsesRatedImpact(t *testing.T) {
	rated := ScoredItem{
		Item:  provider.ContentItem{Title: "Spot ETF approved", Votes: &provider.Votes{Important: 1}},
		Score: HeadlineScore{Sentiment: 0.4, Confidence: 0.9, Impact: 6, ImpactRated: true},
	}
	impact := BuildImpact([]ScoredItem{rated})
	require.Len(t, impact.HotNews, 1)
	// The keyword bonus only applies to derived impact; votes still count.
	assert.Equal(t, 7, impact.HotNews[0].Impact)
	assert.Equal(t, 1, impact.HighImpactCount)
}
