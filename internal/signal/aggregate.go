package signal

import (
	"math"

	"alpha-signal/internal/domain"
)

const (
	DefaultThreshold = 2.0

	highConfidenceNet   = 3.0
	mediumConfidenceNet = 1.5

	minSizeMultiplier = 0.1
	maxSizeMultiplier = 2.0
)

// Weights are fixed per category. Auxiliary categories only count when available.
var Weights = map[string]float64{
	domain.ComponentSocial:    0.20,
	domain.ComponentNews:      0.25,
	domain.ComponentFutures:   0.30,
	domain.ComponentMacro:     0.20,
	domain.ComponentFearGreed: 0.05,
	domain.ComponentDefiTVL:   0.05,
}

// Inputs are the snapshots gathered for one symbol.
type Inputs struct {
	Social    domain.SocialSentiment
	News      domain.NewsImpact
	Futures   domain.FuturesFlow
	Macro     domain.MacroSnapshot
	FearGreed *domain.FearGreed
	DefiTVL   *domain.DefiTVL
}

// Analyze runs every category scorer over in and aggregates the result.
func Analyze(symbol string, in Inputs, threshold float64) domain.ScoringResult {
	contributions := []Contribution{
		ScoreSocial(in.Social),
		ScoreNews(in.News),
		ScoreFutures(in.Futures),
		ScoreMacro(in.Macro),
		ScoreFearGreed(in.FearGreed),
		ScoreDefiTVL(in.DefiTVL),
	}
	result := Aggregate(symbol, contributions, threshold)
	result.Components = map[string]any{
		domain.ComponentSocial:  in.Social,
		domain.ComponentNews:    in.News,
		domain.ComponentFutures: in.Futures,
		domain.ComponentMacro:   in.Macro,
	}
	if in.FearGreed != nil {
		result.Components[domain.ComponentFearGreed] = *in.FearGreed
	}
	if in.DefiTVL != nil {
		result.Components[domain.ComponentDefiTVL] = *in.DefiTVL
	}
	return result
}

// Aggregate weights contributions in the order given and classifies the
// net score. Contributions with an unknown category or marked unavailable
// are ignored.
func Aggregate(symbol string, contributions []Contribution, threshold float64) domain.ScoringResult {
	buy, sell := 0.0, 0.0
	multiplier := 1.0
	signals := []string{}
	warnings := []string{}

	for _, c := range contributions {
		w, ok := Weights[c.Category]
		if !ok || !c.Available {
			continue
		}
		buy += c.Buy * w
		sell += c.Sell * w
		multiplier *= c.Multiplier
		signals = append(signals, c.Signals...)
		warnings = append(warnings, c.Warnings...)
	}

	net := buy - sell
	return domain.ScoringResult{
		Symbol:         symbol,
		BuyScore:       round(buy, 2),
		SellScore:      round(sell, 2),
		NetScore:       round(net, 2),
		SizeMultiplier: round(clamp(multiplier, minSizeMultiplier, maxSizeMultiplier), 2),
		Confidence:     ClassifyConfidence(net),
		Signal:         ClassifySignal(net, threshold),
		Signals:        signals,
		Warnings:       warnings,
		Components:     map[string]any{},
	}
}

func ClassifyConfidence(net float64) domain.Confidence {
	switch abs := math.Abs(net); {
	case abs >= highConfidenceNet:
		return domain.ConfidenceHigh
	case abs >= mediumConfidenceNet:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func ClassifySignal(net, threshold float64) domain.SignalType {
	switch {
	case net >= threshold:
		return domain.SignalBuy
	case net <= -threshold:
		return domain.SignalSell
	default:
		return domain.SignalNeutral
	}
}
