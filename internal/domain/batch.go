package domain

import "time"

type Recommendations struct {
	StrongBuy  []ScoringResult `json:"strong_buy"`
	StrongSell []ScoringResult `json:"strong_sell"`
}

// Top caps both lists at n entries. n <= 0 returns rec unchanged.
func (rec Recommendations) Top(n int) Recommendations {
	if n <= 0 {
		return rec
	}
	if len(rec.StrongBuy) > n {
		rec.StrongBuy = rec.StrongBuy[:n]
	}
	if len(rec.StrongSell) > n {
		rec.StrongSell = rec.StrongSell[:n]
	}
	return rec
}

func (rec Recommendations) Empty() bool {
	return len(rec.StrongBuy) == 0 && len(rec.StrongSell) == 0
}

// Batch is the outcome of one analysis run. Results follow the order of the
// requested symbols; Errors collects per-symbol and input problems that did
// not stop the run.
type Batch struct {
	RunID           string          `json:"run_id"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      time.Time       `json:"finished_at"`
	Threshold       float64         `json:"threshold"`
	Results         []ScoringResult `json:"results"`
	Recommendations Recommendations `json:"recommendations"`
	Errors          []string        `json:"errors,omitempty"`
}

// Result returns the entry for symbol, if the batch has one.
func (b Batch) Result(symbol string) (ScoringResult, bool) {
	for _, r := range b.Results {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return ScoringResult{}, false
}
