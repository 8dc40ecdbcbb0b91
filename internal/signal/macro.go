package signal

import (
	"alpha-signal/internal/domain"
)

// ScoreMacro is the only scorer that adjusts the position size multiplier.
func ScoreMacro(m domain.MacroSnapshot) Contribution {
	c := newContribution(domain.ComponentMacro)

	switch {
	case m.VIX > 25 && m.VIXTrend == domain.TrendUp:
		c.sell(1.5, "High and rising VIX: risk-off environment")
		c.Multiplier *= 0.7
	case m.VIX < 15 && m.VIXTrend == domain.TrendDown:
		c.buy(1.0, "Low and falling VIX: risk-on environment")
	}

	switch {
	case m.DXY > 105 && m.DXYTrend == domain.TrendUp:
		c.sell(1.5, "Strong and rising USD: crypto headwind")
		c.Multiplier *= 0.8
	case m.DXY < 100 && m.DXYTrend == domain.TrendDown:
		c.buy(1.0, "Weak and falling USD: crypto tailwind")
	}

	if m.Treasury10Y > 4.5 && m.YieldTrend == domain.TrendUp {
		c.sell(1.0, "High and rising yields: competing for capital")
	}

	switch {
	case m.SP500ChangePct > 1.0 && m.NasdaqChangePct > 1.5:
		c.buy(1.0, "Strong equity performance: positive correlation")
	case m.SP500ChangePct < -1.0 && m.NasdaqChangePct < -1.5:
		c.sell(0.5, "Weak equity performance: negative correlation")
	}

	switch m.RiskAppetite {
	case domain.RiskAppetiteHigh:
		c.Multiplier *= 1.2
	case domain.RiskAppetiteLow:
		c.Multiplier *= 0.8
	}

	return c
}
