package domain

import (
	"strings"
	"time"
)

type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
	TrendFlat Trend = "FLAT"
)

type RiskAppetite string

const (
	RiskAppetiteHigh   RiskAppetite = "HIGH"
	RiskAppetiteMedium RiskAppetite = "MEDIUM"
	RiskAppetiteLow    RiskAppetite = "LOW"
)

type MarketSentiment string

const (
	SentimentBull    MarketSentiment = "BULL"
	SentimentBear    MarketSentiment = "BEAR"
	SentimentNeutral MarketSentiment = "NEUTRAL"
)

// ParseMarketSentiment upper-cases the label; empty input maps to NEUTRAL.
func ParseMarketSentiment(v string) MarketSentiment {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return SentimentNeutral
	}
	return MarketSentiment(v)
}

type FlowTrend string

const (
	FlowStrongInflow  FlowTrend = "STRONG_INFLOW"
	FlowInflow        FlowTrend = "INFLOW"
	FlowNeutral       FlowTrend = "NEUTRAL"
	FlowOutflow       FlowTrend = "OUTFLOW"
	FlowStrongOutflow FlowTrend = "STRONG_OUTFLOW"
)

func (t FlowTrend) IsInflow() bool {
	return t == FlowStrongInflow || t == FlowInflow
}

func (t FlowTrend) IsOutflow() bool {
	return t == FlowStrongOutflow || t == FlowOutflow
}

type SocialSentiment struct {
	TwitterMentions     int     `json:"twitter_mentions" yaml:"twitter_mentions"`
	TwitterSentiment    float64 `json:"twitter_sentiment" yaml:"twitter_sentiment"`
	RedditPosts         int     `json:"reddit_posts" yaml:"reddit_posts"`
	RedditSentiment     float64 `json:"reddit_sentiment" yaml:"reddit_sentiment"`
	SentimentChange24h  float64 `json:"sentiment_change_24h" yaml:"sentiment_change_24h"`
	InfluencerSentiment float64 `json:"influencer_sentiment" yaml:"influencer_sentiment"`
	GalaxyScore         float64 `json:"galaxy_score" yaml:"galaxy_score"`
	AltRank             int     `json:"alt_rank" yaml:"alt_rank"`
	SocialVolume        float64 `json:"social_volume" yaml:"social_volume"`
	EngagementRate      float64 `json:"engagement_rate" yaml:"engagement_rate"`
}

type HotNewsItem struct {
	Headline  string  `json:"headline" yaml:"headline"`
	Sentiment float64 `json:"sentiment" yaml:"sentiment"`
	Impact    int     `json:"impact" yaml:"impact"`
	Source    string  `json:"source,omitempty" yaml:"source,omitempty"`
	URL       string  `json:"url,omitempty" yaml:"url,omitempty"`
}

type NewsImpact struct {
	HotNews         []HotNewsItem `json:"hot_news" yaml:"hot_news"`
	ArticleCount24h int           `json:"news_volume_24h" yaml:"news_volume_24h"`
	AvgSentiment    float64       `json:"avg_sentiment" yaml:"avg_sentiment"`
	PositiveCount   int           `json:"positive_news" yaml:"positive_news"`
	NegativeCount   int           `json:"negative_news" yaml:"negative_news"`
	NeutralCount    int           `json:"neutral_news" yaml:"neutral_news"`
	HighImpactCount int           `json:"high_impact_count" yaml:"high_impact_count"`
}

// TopHotNews returns at most n hot news items in source order.
func (n NewsImpact) TopHotNews(limit int) []HotNewsItem {
	if limit <= 0 || len(n.HotNews) <= limit {
		return n.HotNews
	}
	return n.HotNews[:limit]
}

type FuturesFlow struct {
	Symbol          string          `json:"symbol"`
	NetFlow24h      float64         `json:"net_flow_24h"`
	NetFlow7d       float64         `json:"net_flow_7d"`
	NetFlow30d      float64         `json:"net_flow_30d"`
	Inflow24h       float64         `json:"inflow_24h"`
	Outflow24h      float64         `json:"outflow_24h"`
	MarketSentiment MarketSentiment `json:"market_sentiment"`
	BalanceVolume   float64         `json:"balance_volume"`
	FlowTrend       FlowTrend       `json:"flow_trend"`
	FlowMomentum    float64         `json:"flow_momentum"`
}

type MacroSnapshot struct {
	VIX               float64      `json:"vix" yaml:"vix"`
	VIXTrend          Trend        `json:"vix_trend" yaml:"vix_trend"`
	DXY               float64      `json:"dxy" yaml:"dxy"`
	DXYTrend          Trend        `json:"dxy_trend" yaml:"dxy_trend"`
	Treasury10Y       float64      `json:"treasury_10y" yaml:"treasury_10y"`
	YieldTrend        Trend        `json:"yield_trend" yaml:"yield_trend"`
	SP500ChangePct    float64      `json:"sp500_change" yaml:"sp500_change"`
	NasdaqChangePct   float64      `json:"nasdaq_change" yaml:"nasdaq_change"`
	RiskAppetite      RiskAppetite `json:"risk_appetite" yaml:"risk_appetite"`
	CryptoCorrelation float64      `json:"crypto_correlation" yaml:"crypto_correlation"`
}

type FearGreed struct {
	Value          int       `json:"value" yaml:"value"`
	Classification string    `json:"classification" yaml:"classification"`
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`
}

type DefiTVL struct {
	TotalTVL     float64 `json:"total_tvl" yaml:"total_tvl"`
	Change24hPct float64 `json:"change_24h_pct" yaml:"change_24h_pct"`
	Change7dPct  float64 `json:"change_7d_pct" yaml:"change_7d_pct"`
}
