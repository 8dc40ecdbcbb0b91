package signal

import (
	"fmt"

	"alpha-signal/internal/domain"
)

// SocialBlend weights platform sentiments 40/30/30 twitter/reddit/influencer.
func SocialBlend(s domain.SocialSentiment) float64 {
	return s.TwitterSentiment*0.4 + s.RedditSentiment*0.3 + s.InfluencerSentiment*0.3
}

func ScoreSocial(s domain.SocialSentiment) Contribution {
	c := newContribution(domain.ComponentSocial)

	switch {
	case s.GalaxyScore >= 70:
		c.buy(1.5, "High Galaxy score: strong community engagement")
	case s.GalaxyScore <= 30:
		c.sell(1.0, "Low Galaxy score: weak social presence")
	}

	switch {
	case s.AltRank <= 50:
		c.buy(1.0, fmt.Sprintf("Strong AltRank #%d: asset is trending", s.AltRank))
	case s.AltRank >= 200:
		c.sell(0.5, fmt.Sprintf("Weak AltRank #%d: little social traction", s.AltRank))
	}

	switch {
	case s.SentimentChange24h > 0.15:
		c.buy(1.0, "Sentiment improving fast: momentum building")
	case s.SentimentChange24h < -0.15:
		c.sell(1.0, "Sentiment deteriorating: caution advised")
	}

	switch blend := SocialBlend(s); {
	case blend > 0.6:
		c.buy(1.5, fmt.Sprintf("Bullish cross-platform sentiment (%.2f)", blend))
	case blend < 0.4:
		c.sell(1.0, fmt.Sprintf("Bearish cross-platform sentiment (%.2f)", blend))
	}

	return c
}
