package signal

// Contribution is the raw output of one category scorer before weighting.
type Contribution struct {
	Category   string
	Buy        float64
	Sell       float64
	Multiplier float64
	Signals    []string
	Warnings   []string
	// Available is false for auxiliary indicators whose data could not be fetched.
	Available bool
}

func newContribution(category string) Contribution {
	return Contribution{Category: category, Multiplier: 1.0, Available: true}
}

func (c *Contribution) buy(points float64, msg string) {
	c.Buy += points
	if msg != "" {
		c.Signals = append(c.Signals, msg)
	}
}

func (c *Contribution) sell(points float64, msg string) {
	c.Sell += points
	if msg != "" {
		c.Warnings = append(c.Warnings, msg)
	}
}

// Unavailable marks an auxiliary category as absent from aggregation.
func Unavailable(category string) Contribution {
	return Contribution{Category: category, Multiplier: 1.0}
}
