package signal

import (
	"alpha-signal/internal/domain"
)

const hotNewsConsidered = 3

func ScoreNews(n domain.NewsImpact) Contribution {
	c := newContribution(domain.ComponentNews)

	switch {
	case n.AvgSentiment > 0.6:
		c.buy(2.0, "Strongly positive news sentiment: bullish catalyst")
	case n.AvgSentiment < 0.3:
		c.sell(1.5, "Negative news sentiment: selling pressure")
	}

	if n.HighImpactCount >= 2 {
		if n.PositiveCount > n.NegativeCount {
			c.buy(1.5, "Multiple high-impact positive news events")
		} else {
			c.sell(1.0, "Multiple high-impact negative news events")
		}
	}

	if n.ArticleCount24h > 50 {
		c.buy(0.5, "High news volume: rising market attention")
	}

	for _, item := range n.TopHotNews(hotNewsConsidered) {
		switch {
		case item.Impact >= 7 && item.Sentiment > 0.5:
			c.buy(1.0, "")
		case item.Impact >= 7 && item.Sentiment < -0.3:
			c.sell(1.0, "")
		}
	}

	return c
}
