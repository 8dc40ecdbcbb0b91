package domain

// Neutral snapshots are substituted when a live source fails. None of them
// fires a scoring rule.

func NeutralSocial() SocialSentiment {
	return SocialSentiment{
		TwitterSentiment:    0.5,
		RedditSentiment:     0.5,
		InfluencerSentiment: 0.5,
		GalaxyScore:         50,
		AltRank:             100,
	}
}

func NeutralNews() NewsImpact {
	return NewsImpact{
		HotNews:      []HotNewsItem{},
		AvgSentiment: 0.45,
	}
}

func NeutralMacro() MacroSnapshot {
	return MacroSnapshot{
		VIX:          20,
		VIXTrend:     TrendFlat,
		DXY:          102,
		DXYTrend:     TrendFlat,
		Treasury10Y:  4.0,
		YieldTrend:   TrendFlat,
		RiskAppetite: RiskAppetiteMedium,
	}
}

// NeutralFutures is the record used for a symbol absent from the futures payload.
func NeutralFutures(symbol string) FuturesFlow {
	return FuturesFlow{
		Symbol:          symbol,
		MarketSentiment: SentimentNeutral,
		FlowTrend:       FlowNeutral,
	}
}
