package signal

import (
	"sort"

	"alpha-signal/internal/domain"
)

// Rank selects high-confidence BUY and SELL results. Strong buys are ordered
// by net score descending, strong sells ascending; ties keep input order.
func Rank(results []domain.ScoringResult) domain.Recommendations {
	rec := domain.Recommendations{
		StrongBuy:  []domain.ScoringResult{},
		StrongSell: []domain.ScoringResult{},
	}
	for _, r := range results {
		switch {
		case r.IsStrongBuy():
			rec.StrongBuy = append(rec.StrongBuy, r)
		case r.IsStrongSell():
			rec.StrongSell = append(rec.StrongSell, r)
		}
	}
	sort.SliceStable(rec.StrongBuy, func(i, j int) bool {
		return rec.StrongBuy[i].NetScore > rec.StrongBuy[j].NetScore
	})
	sort.SliceStable(rec.StrongSell, func(i, j int) bool {
		return rec.StrongSell[i].NetScore < rec.StrongSell[j].NetScore
	})
	return rec
}
