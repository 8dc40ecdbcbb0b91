package signal

import (
	"testing"

	"alpha-signal/internal/domain"

	"github.com/stretchr/testify/assert"
)

func sampleSocial() domain.SocialSentiment {
	return domain.SocialSentiment{
		TwitterMentions:     1500,
		TwitterSentiment:    0.65,
		RedditPosts:         320,
		RedditSentiment:     0.58,
		SentimentChange24h:  0.12,
		InfluencerSentiment: 0.72,
		GalaxyScore:         68.5,
		AltRank:             45,
		SocialVolume:        1820,
		EngagementRate:      0.85,
	}
}

func sampleNews(symbol string) domain.NewsImpact {
	return domain.NewsImpact{
		HotNews: []domain.HotNewsItem{
			{Headline: "Major partnership announced for " + symbol, Sentiment: 0.8, Impact: 8},
			{Headline: "Regulatory concerns for " + symbol, Sentiment: -0.6, Impact: 7},
		},
		ArticleCount24h: 25,
		AvgSentiment:    0.42,
		PositiveCount:   8,
		NegativeCount:   5,
		NeutralCount:    12,
		HighImpactCount: 3,
	}
}

func sampleMacro() domain.MacroSnapshot {
	return domain.MacroSnapshot{
		VIX:               18.5,
		VIXTrend:          domain.TrendDown,
		DXY:               103.2,
		DXYTrend:          domain.TrendFlat,
		Treasury10Y:       4.25,
		YieldTrend:        domain.TrendUp,
		SP500ChangePct:    0.8,
		NasdaqChangePct:   1.2,
		RiskAppetite:      domain.RiskAppetiteMedium,
		CryptoCorrelation: 0.65,
	}
}

func TestScoreSocialSample(t *testing.T) {
	c := ScoreSocial(sampleSocial())
	assert.InDelta(t, 0.65, SocialBlend(sampleSocial()), 1e-9)
	assert.Equal(t, 2.5, c.Buy)
	assert.Equal(t, 0.0, c.Sell)
	assert.Len(t, c.Signals, 2)
	assert.Empty(t, c.Warnings)
	assert.Equal(t, 1.0, c.Multiplier)
}

func TestScoreSocialBearish(t *testing.T) {
	c := ScoreSocial(domain.SocialSentiment{
		TwitterSentiment:    0.2,
		RedditSentiment:     0.2,
		InfluencerSentiment: 0.2,
		SentimentChange24h:  -0.2,
		GalaxyScore:         20,
		AltRank:             250,
	})
	assert.Equal(t, 0.0, c.Buy)
	assert.Equal(t, 3.5, c.Sell)
	assert.Len(t, c.Warnings, 4)
}

func TestScoreSocialBoundaries(t *testing.T) {
	base := domain.NeutralSocial()

	s := base
	s.GalaxyScore = 70
	assert.Equal(t, 1.5, ScoreSocial(s).Buy)

	s = base
	s.GalaxyScore = 30
	assert.Equal(t, 1.0, ScoreSocial(s).Sell)

	s = base
	s.AltRank = 50
	assert.Equal(t, 1.0, ScoreSocial(s).Buy)

	s = base
	s.AltRank = 200
	assert.Equal(t, 0.5, ScoreSocial(s).Sell)

	s = base
	s.SentimentChange24h = 0.15
	c := ScoreSocial(s)
	assert.Zero(t, c.Buy)
	assert.Zero(t, c.Sell)
}

func TestScoreNewsSample(t *testing.T) {
	c := ScoreNews(sampleNews("BTC"))
	assert.Equal(t, 2.5, c.Buy)
	assert.Equal(t, 1.0, c.Sell)
	assert.Len(t, c.Signals, 1)
	assert.Empty(t, c.Warnings)
}

func TestScoreNewsRules(t *testing.T) {
	c := ScoreNews(domain.NewsImpact{AvgSentiment: 0.7, ArticleCount24h: 60})
	assert.Equal(t, 2.5, c.Buy)

	c = ScoreNews(domain.NewsImpact{AvgSentiment: 0.2})
	assert.Equal(t, 1.5, c.Sell)

	c = ScoreNews(domain.NewsImpact{AvgSentiment: 0.45, HighImpactCount: 2, PositiveCount: 3, NegativeCount: 3})
	assert.Equal(t, 1.0, c.Sell)
	assert.Zero(t, c.Buy)
}

func TestScoreNewsOnlyTopThreeHotItems(t *testing.T) {
	hot := make([]domain.HotNewsItem, 4)
	for i := range hot {
		hot[i] = domain.HotNewsItem{Headline: "up", Sentiment: 0.9, Impact: 9}
	}
	c := ScoreNews(domain.NewsImpact{AvgSentiment: 0.45, HotNews: hot})
	assert.Equal(t, 3.0, c.Buy)
}

func TestScoreNewsHotItemThresholdsAreStrict(t *testing.T) {
	c := ScoreNews(domain.NewsImpact{AvgSentiment: 0.45, HotNews: []domain.HotNewsItem{
		{Sentiment: 0.5, Impact: 7},
		{Sentiment: -0.3, Impact: 9},
		{Sentiment: 0.9, Impact: 6},
	}})
	assert.Zero(t, c.Buy)
	assert.Zero(t, c.Sell)
}

func TestScoreNewsNeutral(t *testing.T) {
	c := ScoreNews(domain.NeutralNews())
	assert.Zero(t, c.Buy)
	assert.Zero(t, c.Sell)
}

func TestScoreFuturesStrongInflow(t *testing.T) {
	f := DeriveFlow(domain.FuturesFlow{
		Symbol:          "BTC",
		NetFlow24h:      1000,
		NetFlow7d:       5600,
		MarketSentiment: domain.SentimentBull,
		BalanceVolume:   2_000_000,
	})
	c := ScoreFutures(f)
	assert.Equal(t, 5.0, c.Buy)
	assert.Equal(t, 0.0, c.Sell)
	assert.Len(t, c.Signals, 3)
}

func TestScoreFuturesStrongOutflow(t *testing.T) {
	f := DeriveFlow(domain.FuturesFlow{
		NetFlow24h:      -1000,
		NetFlow7d:       7000,
		MarketSentiment: domain.SentimentBear,
	})
	c := ScoreFutures(f)
	assert.Equal(t, domain.FlowStrongOutflow, f.FlowTrend)
	assert.Equal(t, 0.0, c.Buy)
	assert.Equal(t, 4.0, c.Sell)
	assert.Len(t, c.Warnings, 3)
}

func TestScoreFuturesBalanceVolumeWithFlatFlow(t *testing.T) {
	f := DeriveFlow(domain.FuturesFlow{BalanceVolume: 1_500_000})
	c := ScoreFutures(f)
	assert.Equal(t, 0.5, c.Sell)
	assert.Zero(t, c.Buy)
}

func TestScoreFuturesNeutralRecord(t *testing.T) {
	c := ScoreFutures(DeriveFlow(domain.NeutralFutures("BTC")))
	assert.Zero(t, c.Buy)
	assert.Zero(t, c.Sell)
}

func TestScoreMacroSampleIsNeutral(t *testing.T) {
	c := ScoreMacro(sampleMacro())
	assert.Zero(t, c.Buy)
	assert.Zero(t, c.Sell)
	assert.Equal(t, 1.0, c.Multiplier)

	c = ScoreMacro(domain.NeutralMacro())
	assert.Zero(t, c.Buy)
	assert.Zero(t, c.Sell)
	assert.Equal(t, 1.0, c.Multiplier)
}

func TestScoreMacroBearish(t *testing.T) {
	c := ScoreMacro(domain.MacroSnapshot{
		VIX: 30, VIXTrend: domain.TrendUp,
		DXY: 106, DXYTrend: domain.TrendUp,
		Treasury10Y: 4.8, YieldTrend: domain.TrendUp,
		SP500ChangePct: -1.5, NasdaqChangePct: -2,
		RiskAppetite: domain.RiskAppetiteLow,
	})
	assert.Equal(t, 4.5, c.Sell)
	assert.Zero(t, c.Buy)
	assert.InDelta(t, 0.448, c.Multiplier, 1e-9)
	assert.Len(t, c.Warnings, 4)
}

func TestScoreMacroBullish(t *testing.T) {
	c := ScoreMacro(domain.MacroSnapshot{
		VIX: 12, VIXTrend: domain.TrendDown,
		DXY: 98, DXYTrend: domain.TrendDown,
		Treasury10Y: 4.0, YieldTrend: domain.TrendFlat,
		SP500ChangePct: 1.5, NasdaqChangePct: 2,
		RiskAppetite: domain.RiskAppetiteHigh,
	})
	assert.Equal(t, 3.0, c.Buy)
	assert.InDelta(t, 1.2, c.Multiplier, 1e-9)
}

func TestScoreMacroThresholdsAreStrict(t *testing.T) {
	m := domain.NeutralMacro()
	m.VIX, m.VIXTrend = 25, domain.TrendUp
	m.DXY, m.DXYTrend = 105, domain.TrendUp
	m.Treasury10Y, m.YieldTrend = 4.5, domain.TrendUp
	c := ScoreMacro(m)
	assert.Zero(t, c.Sell)
	assert.Equal(t, 1.0, c.Multiplier)
}

func TestScoreFearGreed(t *testing.T) {
	assert.False(t, ScoreFearGreed(nil).Available)

	cases := []struct {
		value int
		buy   float64
		sell  float64
	}{
		{10, 1.5, 0},
		{25, 1.5, 0},
		{26, 0, 0.5},
		{45, 0, 0.5},
		{50, 0, 0},
		{55, 0.5, 0},
		{74, 0.5, 0},
		{75, 0, 1.5},
		{95, 0, 1.5},
	}
	for _, tc := range cases {
		c := ScoreFearGreed(&domain.FearGreed{Value: tc.value})
		assert.True(t, c.Available)
		assert.Equal(t, tc.buy, c.Buy, "value %d", tc.value)
		assert.Equal(t, tc.sell, c.Sell, "value %d", tc.value)
		assert.Empty(t, c.Warnings)
	}
}

func TestScoreDefiTVL(t *testing.T) {
	assert.False(t, ScoreDefiTVL(nil).Available)

	c := ScoreDefiTVL(&domain.DefiTVL{Change24hPct: 3, Change7dPct: 6})
	assert.Equal(t, 1.5, c.Buy)

	c = ScoreDefiTVL(&domain.DefiTVL{Change24hPct: -3, Change7dPct: -6})
	assert.Equal(t, 1.5, c.Sell)
	assert.Empty(t, c.Warnings)
	assert.Len(t, c.Signals, 1)

	c = ScoreDefiTVL(&domain.DefiTVL{Change24hPct: 1, Change7dPct: 1})
	assert.Zero(t, c.Buy)
	assert.Zero(t, c.Sell)
}

func TestScorersNeverGoNegative(t *testing.T) {
	big := 1e12
	cases := []struct {
		name string
		c    Contribution
	}{
		{"social negative", ScoreSocial(domain.SocialSentiment{
			GalaxyScore: -50, AltRank: -10, SentimentChange24h: -5,
			TwitterSentiment: -1, RedditSentiment: -1, InfluencerSentiment: -1,
			TwitterMentions: -3, RedditPosts: -3, SocialVolume: -big,
		})},
		{"social extreme", ScoreSocial(domain.SocialSentiment{
			GalaxyScore: big, AltRank: 1 << 30, SentimentChange24h: big,
			TwitterSentiment: big, RedditSentiment: big, InfluencerSentiment: big,
		})},
		{"news negative", ScoreNews(domain.NewsImpact{
			ArticleCount24h: -5, AvgSentiment: -1, PositiveCount: -2, NegativeCount: -1, HighImpactCount: -4,
			HotNews: []domain.HotNewsItem{{Sentiment: -1, Impact: -3}, {Sentiment: -1, Impact: 10}},
		})},
		{"news extreme", ScoreNews(domain.NewsImpact{
			ArticleCount24h: 1 << 30, AvgSentiment: big, HighImpactCount: 1 << 30,
			HotNews: []domain.HotNewsItem{{Sentiment: big, Impact: 1 << 30}},
		})},
		{"futures outflow", ScoreFutures(DeriveFlow(domain.FuturesFlow{
			NetFlow24h: -big, NetFlow7d: big, BalanceVolume: -big, MarketSentiment: domain.SentimentBear,
		}))},
		{"futures inflow", ScoreFutures(DeriveFlow(domain.FuturesFlow{
			NetFlow24h: big, NetFlow7d: -big, BalanceVolume: big, MarketSentiment: domain.SentimentBull,
		}))},
		{"macro negative", ScoreMacro(domain.MacroSnapshot{
			VIX: -10, VIXTrend: domain.TrendDown, DXY: -10, DXYTrend: domain.TrendDown,
			Treasury10Y: -1, YieldTrend: domain.TrendDown, SP500ChangePct: -big, NasdaqChangePct: -big,
			RiskAppetite: domain.RiskAppetiteLow,
		})},
		{"macro extreme", ScoreMacro(domain.MacroSnapshot{
			VIX: big, VIXTrend: domain.TrendUp, DXY: big, DXYTrend: domain.TrendUp,
			Treasury10Y: big, YieldTrend: domain.TrendUp, SP500ChangePct: big, NasdaqChangePct: big,
			RiskAppetite: domain.RiskAppetiteHigh,
		})},
		{"fear greed negative", ScoreFearGreed(&domain.FearGreed{Value: -20})},
		{"fear greed extreme", ScoreFearGreed(&domain.FearGreed{Value: 1000})},
		{"tvl negative", ScoreDefiTVL(&domain.DefiTVL{TotalTVL: -big, Change24hPct: -big, Change7dPct: -big})},
		{"tvl extreme", ScoreDefiTVL(&domain.DefiTVL{TotalTVL: big, Change24hPct: big, Change7dPct: big})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.GreaterOrEqual(t, tc.c.Buy, 0.0)
			assert.GreaterOrEqual(t, tc.c.Sell, 0.0)
			assert.Greater(t, tc.c.Multiplier, 0.0)
		})
	}
}
