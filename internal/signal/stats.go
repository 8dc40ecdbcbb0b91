package signal

import (
	"math"

	"alpha-signal/internal/domain"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const histogramBins = 20

// StatFields are the result columns included in the correlation matrix.
var StatFields = []string{"buy_score", "sell_score", "net_score", "size_multiplier"}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type BatchStats struct {
	Count            int                           `json:"count"`
	SignalCounts     map[domain.SignalType]int     `json:"signal_counts"`
	ConfidenceCounts map[domain.Confidence]int     `json:"confidence_counts"`
	MeanNetScore     float64                       `json:"mean_net_score"`
	Correlation      map[string]map[string]float64 `json:"correlation"`
	NetHistogram     []HistogramBin                `json:"net_histogram"`
}

// Summarize computes descriptive statistics over a batch. Correlations that
// are undefined (fewer than two results or a constant column) are reported as 0.
func Summarize(results []domain.ScoringResult) BatchStats {
	out := BatchStats{
		Count:            len(results),
		SignalCounts:     map[domain.SignalType]int{},
		ConfidenceCounts: map[domain.Confidence]int{},
		Correlation:      map[string]map[string]float64{},
		NetHistogram:     []HistogramBin{},
	}
	if len(results) == 0 {
		return out
	}

	cols := make(map[string][]float64, len(StatFields))
	for _, r := range results {
		out.SignalCounts[r.Signal]++
		out.ConfidenceCounts[r.Confidence]++
		cols["buy_score"] = append(cols["buy_score"], r.BuyScore)
		cols["sell_score"] = append(cols["sell_score"], r.SellScore)
		cols["net_score"] = append(cols["net_score"], r.NetScore)
		cols["size_multiplier"] = append(cols["size_multiplier"], r.SizeMultiplier)
	}
	out.MeanNetScore = round(stat.Mean(cols["net_score"], nil), 2)

	for _, a := range StatFields {
		row := make(map[string]float64, len(StatFields))
		for _, b := range StatFields {
			row[b] = correlation(cols[a], cols[b])
		}
		out.Correlation[a] = row
	}

	out.NetHistogram = histogram(cols["net_score"], histogramBins)
	return out
}

func correlation(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	c := stat.Correlation(x, y, nil)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return round(c, 4)
}

// histogram splits [min, max] into equal-width bins; the last bin is closed.
func histogram(values []float64, bins int) []HistogramBin {
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		return []HistogramBin{{Lower: lo, Upper: hi, Count: len(values)}}
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)

	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{Lower: round(edges[i], 4), Upper: round(edges[i+1], 4)}
	}
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}
