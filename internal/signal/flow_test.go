package signal

import (
	"encoding/json"
	"strings"
	"testing"

	"alpha-signal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSymbol(t *testing.T) {
	cases := []struct {
		pair string
		want string
	}{
		{"BTC-USDT-PERP@binance", "BTC"},
		{"ETH-PERP@okx", "ETH"},
		{"SOL-USDT", "SOL"},
		{"DOGE", "DOGE"},
		{"btc-usdt-perp@binance", "BTC"},
		{" eth-Perp@okx", "ETH"},
		{"pepe", "PEPE"},
		{"@binance", ""},
		{"-USDT", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.pair, func(t *testing.T) {
			got := ExtractSymbol(tc.pair)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, ExtractSymbol(got), "extraction must be idempotent")
		})
	}
}

func TestExtractSymbolStripsOnlyFirstSuffix(t *testing.T) {
	assert.Equal(t, "ABC-PERP", ExtractSymbol("ABC-PERP-USDT-PERP"))
}

func TestFlowMomentum(t *testing.T) {
	assert.Equal(t, 0.25, FlowMomentum(1000, 5600))
	assert.Equal(t, 0.0, FlowMomentum(1000, 0))
	assert.Equal(t, -2.25, FlowMomentum(-1000, 5600))
	assert.Equal(t, -0.3, FlowMomentum(700, 7000))
	assert.Equal(t, 0.333, FlowMomentum(1333.33, 7000))
}

func TestClassifyFlowTrend(t *testing.T) {
	cases := []struct {
		name     string
		net      float64
		momentum float64
		want     domain.FlowTrend
	}{
		{"strong inflow", 1000, 0.25, domain.FlowStrongInflow},
		{"inflow at momentum boundary", 1000, 0.1, domain.FlowInflow},
		{"inflow with negative momentum", 5, -3, domain.FlowInflow},
		{"strong outflow", -5, -0.5, domain.FlowStrongOutflow},
		{"outflow at momentum boundary", -5, -0.1, domain.FlowOutflow},
		{"outflow with positive momentum", -5, 0.4, domain.FlowOutflow},
		{"flat", 0, 5, domain.FlowNeutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyFlowTrend(tc.net, tc.momentum))
		})
	}
}

func TestParseFuturesPayload(t *testing.T) {
	raw := `[
		{"p":"BTC-USDT-PERP@binance","sm":{"24h":1000,"7d":5600,"30d":20000},"cin":{"24h":5000},"cout":{"24h":4000},"st":{"24h":"bull"},"bv":{"24h":2000000}},
		{"p":"@okx","sm":{"24h":1}},
		{"p":"ETH-PERP","sm":{"24h":-50,"7d":700}}
	]`
	var entries []FuturesEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))

	set := ParseFuturesPayload(entries)
	assert.Equal(t, []string{"BTC", "ETH"}, set.Symbols)
	assert.Len(t, set.Skipped, 1)

	btc := set.Flows["BTC"]
	assert.Equal(t, 1000.0, btc.NetFlow24h)
	assert.Equal(t, 20000.0, btc.NetFlow30d)
	assert.Equal(t, 5000.0, btc.Inflow24h)
	assert.Equal(t, 4000.0, btc.Outflow24h)
	assert.Equal(t, domain.SentimentBull, btc.MarketSentiment)
	assert.Equal(t, 2000000.0, btc.BalanceVolume)
	assert.Equal(t, 0.25, btc.FlowMomentum)
	assert.Equal(t, domain.FlowStrongInflow, btc.FlowTrend)

	eth := set.Flows["ETH"]
	assert.Equal(t, domain.SentimentNeutral, eth.MarketSentiment)
	assert.Equal(t, -1.5, eth.FlowMomentum)
	assert.Equal(t, domain.FlowStrongOutflow, eth.FlowTrend)
}

func TestParseFuturesPayloadDuplicateKeepsFirstPosition(t *testing.T) {
	set := ParseFuturesPayload([]FuturesEntry{
		{Pair: "BTC-USDT-PERP@binance", NetFlow: windowValues{H24: 1000, D7: 5600}},
		{Pair: "ETH-PERP"},
		{Pair: "BTC-USDT@okx", NetFlow: windowValues{H24: -10, D7: 70}},
	})
	require.Equal(t, []string{"BTC", "ETH"}, set.Symbols)
	assert.Equal(t, -10.0, set.Flows["BTC"].NetFlow24h)
	assert.Equal(t, domain.FlowStrongOutflow, set.Flows["BTC"].FlowTrend)
}

func TestFuturesSetLookupMissingSymbolIsNeutral(t *testing.T) {
	set := ParseFuturesPayload(nil)
	f := set.Lookup("XRP")
	assert.Equal(t, "XRP", f.Symbol)
	assert.Equal(t, domain.FlowNeutral, f.FlowTrend)
	assert.Equal(t, 0.0, f.FlowMomentum)
	assert.Equal(t, 0, set.Len())
}

func TestDecodeFutures(t *testing.T) {
	set, err := DecodeFutures(strings.NewReader(`[{"p":"SOL-USDT","sm":{"24h":10,"7d":70}}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"SOL"}, set.Symbols)
	assert.Equal(t, domain.FlowInflow, set.Flows["SOL"].FlowTrend)

	_, err = DecodeFutures(strings.NewReader(`{"p":"BTC"}`))
	assert.Error(t, err)
}

func TestParseFuturesPayloadMixedCasePairs(t *testing.T) {
	set := ParseFuturesPayload([]FuturesEntry{
		{Pair: "btc-usdt-perp@binance", NetFlow: windowValues{H24: 1000, D7: 5600}},
		{Pair: "Eth-Usdt@okx", NetFlow: windowValues{H24: -10, D7: 70}},
	})
	require.Equal(t, []string{"BTC", "ETH"}, set.Symbols)

	btc := set.Lookup("btc")
	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, 1000.0, btc.NetFlow24h)
	assert.Equal(t, domain.FlowStrongInflow, btc.FlowTrend)
	assert.Equal(t, domain.FlowStrongOutflow, set.Lookup("ETH").FlowTrend)
}
