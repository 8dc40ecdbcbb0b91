package signal

import (
	"alpha-signal/internal/domain"
)

const largeBalanceVolume = 1_000_000

// ScoreFutures expects a record with derived trend and momentum filled in.
func ScoreFutures(f domain.FuturesFlow) Contribution {
	c := newContribution(domain.ComponentFutures)

	switch f.FlowTrend {
	case domain.FlowStrongInflow:
		c.buy(2.5, "Strong inflow trend: capital entering the market")
	case domain.FlowInflow:
		c.buy(1.5, "Positive inflow: bullish capital flow")
	case domain.FlowStrongOutflow:
		c.sell(2.0, "Strong outflow: capital leaving the market")
	case domain.FlowOutflow:
		c.sell(1.0, "Negative flow: bearish capital flow")
	}

	switch {
	case f.FlowMomentum > 0.2:
		c.buy(1.0, "Inflow accelerating: momentum building")
	case f.FlowMomentum < -0.2:
		c.sell(1.0, "Outflow accelerating: momentum deteriorating")
	}

	switch {
	case f.MarketSentiment == domain.SentimentBull && f.FlowTrend.IsInflow():
		c.buy(1.0, "Bullish sentiment confirmed by inflow")
	case f.MarketSentiment == domain.SentimentBear && f.FlowTrend.IsOutflow():
		c.sell(1.0, "Bearish sentiment confirmed by outflow")
	}

	if f.BalanceVolume > largeBalanceVolume {
		if f.NetFlow24h > 0 {
			c.buy(0.5, "")
		} else {
			c.sell(0.5, "")
		}
	}

	return c
}
