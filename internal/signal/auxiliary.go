package signal

import (
	"fmt"

	"alpha-signal/internal/domain"
)

// ScoreFearGreed reads the index contrarian at the extremes and with the
// crowd in the moderate bands. A nil input means the index is unavailable.
func ScoreFearGreed(fg *domain.FearGreed) Contribution {
	if fg == nil {
		return Unavailable(domain.ComponentFearGreed)
	}
	c := newContribution(domain.ComponentFearGreed)
	switch v := fg.Value; {
	case v <= 25:
		c.buy(1.5, fmt.Sprintf("Extreme fear (%d): contrarian buy zone", v))
	case v <= 45:
		c.Sell += 0.5
	case v >= 75:
		c.Sell += 1.5
		c.Signals = append(c.Signals, fmt.Sprintf("Extreme greed (%d): market overheated", v))
	case v >= 55:
		c.buy(0.5, fmt.Sprintf("Greed (%d): risk appetite supportive", v))
	}
	return c
}

// ScoreDefiTVL scores aggregate DeFi TVL growth. Nil means unavailable.
func ScoreDefiTVL(tvl *domain.DefiTVL) Contribution {
	if tvl == nil {
		return Unavailable(domain.ComponentDefiTVL)
	}
	c := newContribution(domain.ComponentDefiTVL)
	switch {
	case tvl.Change24hPct > 2:
		c.buy(1.0, fmt.Sprintf("DeFi TVL up %.1f%% in 24h", tvl.Change24hPct))
	case tvl.Change24hPct < -2:
		c.Sell += 1.0
		c.Signals = append(c.Signals, fmt.Sprintf("DeFi TVL down %.1f%% in 24h", -tvl.Change24hPct))
	}
	switch {
	case tvl.Change7dPct > 5:
		c.buy(0.5, "")
	case tvl.Change7dPct < -5:
		c.Sell += 0.5
	}
	return c
}
