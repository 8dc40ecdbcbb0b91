package domain

type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

type SignalType string

const (
	SignalBuy     SignalType = "BUY"
	SignalSell    SignalType = "SELL"
	SignalNeutral SignalType = "NEUTRAL"
)

// Component keys used in ScoringResult.Components.
const (
	ComponentSocial    = "social"
	ComponentNews      = "news"
	ComponentFutures   = "futures"
	ComponentMacro     = "macro"
	ComponentFearGreed = "fear_greed"
	ComponentDefiTVL   = "defi_tvl"
)

// ScoringResult is the per-symbol output of one analysis run. Scores are
// rounded to two decimals; classification is done before rounding.
type ScoringResult struct {
	Symbol         string         `json:"symbol"`
	BuyScore       float64        `json:"buy_score"`
	SellScore      float64        `json:"sell_score"`
	NetScore       float64        `json:"net_score"`
	SizeMultiplier float64        `json:"size_multiplier"`
	Confidence     Confidence     `json:"confidence"`
	Signal         SignalType     `json:"signal"`
	Signals        []string       `json:"signals"`
	Warnings       []string       `json:"warnings"`
	Components     map[string]any `json:"components"`
}

// IsStrongBuy reports whether the result qualifies for the strong-buy list.
func (r ScoringResult) IsStrongBuy() bool {
	return r.Signal == SignalBuy && r.Confidence == ConfidenceHigh
}

func (r ScoringResult) IsStrongSell() bool {
	return r.Signal == SignalSell && r.Confidence == ConfidenceHigh
}
