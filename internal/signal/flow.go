package signal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"alpha-signal/internal/domain"
)

const momentumThreshold = 0.1

// pairSuffixes are stripped in order; only the first match is removed.
var pairSuffixes = []string{"-USDT-PERP", "-PERP", "-USDT"}

// ExtractSymbol turns an exchange pair such as "BTC-USDT-PERP@binance" into
// its upper-case base symbol. Bare symbols are only upper-cased.
func ExtractSymbol(pair string) string {
	base, _, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(pair)), "@")
	for _, suffix := range pairSuffixes {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// FlowMomentum compares the latest day against the trailing daily average.
// Returns 0 when the 7-day average is zero.
func FlowMomentum(netFlow24h, netFlow7d float64) float64 {
	dailyAvg := netFlow7d / 7
	if dailyAvg == 0 {
		return 0
	}
	return round(netFlow24h/dailyAvg-1, 3)
}

func ClassifyFlowTrend(netFlow24h, momentum float64) domain.FlowTrend {
	switch {
	case netFlow24h > 0 && momentum > momentumThreshold:
		return domain.FlowStrongInflow
	case netFlow24h > 0:
		return domain.FlowInflow
	case netFlow24h < 0 && momentum < -momentumThreshold:
		return domain.FlowStrongOutflow
	case netFlow24h < 0:
		return domain.FlowOutflow
	default:
		return domain.FlowNeutral
	}
}

// DeriveFlow fills the derived trend and momentum fields.
func DeriveFlow(f domain.FuturesFlow) domain.FuturesFlow {
	f.FlowMomentum = FlowMomentum(f.NetFlow24h, f.NetFlow7d)
	f.FlowTrend = ClassifyFlowTrend(f.NetFlow24h, f.FlowMomentum)
	if f.MarketSentiment == "" {
		f.MarketSentiment = domain.SentimentNeutral
	}
	return f
}

type windowValues struct {
	H24 float64 `json:"24h"`
	D7  float64 `json:"7d"`
	D30 float64 `json:"30d"`
}

type windowLabel struct {
	H24 string `json:"24h"`
}

// FuturesEntry is one record of the bulk futures fund-flow payload.
type FuturesEntry struct {
	Pair          string       `json:"p"`
	NetFlow       windowValues `json:"sm"`
	Inflow        windowValues `json:"cin"`
	Outflow       windowValues `json:"cout"`
	Sentiment     windowLabel  `json:"st"`
	BalanceVolume windowValues `json:"bv"`
}

// FuturesSet holds parsed futures records keyed by symbol, plus the order
// in which symbols first appeared.
type FuturesSet struct {
	Symbols []string
	Flows   map[string]domain.FuturesFlow
	Skipped []string
}

// Lookup returns the record for symbol or the neutral zero record. Symbols
// are matched case-insensitively.
func (s FuturesSet) Lookup(symbol string) domain.FuturesFlow {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if f, ok := s.Flows[symbol]; ok {
		return f
	}
	return DeriveFlow(domain.NeutralFutures(symbol))
}

func (s FuturesSet) Len() int {
	return len(s.Symbols)
}

// ParseFuturesPayload converts raw entries into derived flow records. Entries
// whose pair reduces to an empty symbol are skipped; a later duplicate
// overwrites an earlier one but keeps the first position.
func ParseFuturesPayload(entries []FuturesEntry) FuturesSet {
	set := FuturesSet{
		Symbols: make([]string, 0, len(entries)),
		Flows:   make(map[string]domain.FuturesFlow, len(entries)),
	}
	for i, e := range entries {
		symbol := ExtractSymbol(e.Pair)
		if symbol == "" {
			set.Skipped = append(set.Skipped, fmt.Sprintf("entry %d: empty symbol from pair %q", i, e.Pair))
			continue
		}
		if _, seen := set.Flows[symbol]; !seen {
			set.Symbols = append(set.Symbols, symbol)
		}
		set.Flows[symbol] = DeriveFlow(domain.FuturesFlow{
			Symbol:          symbol,
			NetFlow24h:      e.NetFlow.H24,
			NetFlow7d:       e.NetFlow.D7,
			NetFlow30d:      e.NetFlow.D30,
			Inflow24h:       e.Inflow.H24,
			Outflow24h:      e.Outflow.H24,
			MarketSentiment: domain.ParseMarketSentiment(e.Sentiment.H24),
			BalanceVolume:   e.BalanceVolume.H24,
		})
	}
	return set
}

// DecodeFutures reads a JSON array of futures records and parses it.
func DecodeFutures(r io.Reader) (FuturesSet, error) {
	var entries []FuturesEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return FuturesSet{}, fmt.Errorf("decode futures payload: %w", err)
	}
	return ParseFuturesPayload(entries), nil
}
