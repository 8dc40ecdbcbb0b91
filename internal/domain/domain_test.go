package domain

import "testing"

func TestParseMarketSentiment(t *testing.T) {
	cases := map[string]MarketSentiment{
		"bull":     SentimentBull,
		" Bear ":   SentimentBear,
		"":         SentimentNeutral,
		"sideways": MarketSentiment("SIDEWAYS"),
	}
	for in, want := range cases {
		if got := ParseMarketSentiment(in); got != want {
			t.Errorf("ParseMarketSentiment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFlowTrendDirection(t *testing.T) {
	if !FlowStrongInflow.IsInflow() || !FlowInflow.IsInflow() || FlowNeutral.IsInflow() {
		t.Fatal("inflow classification wrong")
	}
	if !FlowStrongOutflow.IsOutflow() || !FlowOutflow.IsOutflow() || FlowInflow.IsOutflow() {
		t.Fatal("outflow classification wrong")
	}
}

func TestTopHotNews(t *testing.T) {
	n := NewsImpact{HotNews: []HotNewsItem{{Headline: "a"}, {Headline: "b"}, {Headline: "c"}, {Headline: "d"}}}
	top := n.TopHotNews(3)
	if len(top) != 3 || top[2].Headline != "c" {
		t.Fatalf("unexpected top news: %+v", top)
	}
	if len(NewsImpact{}.TopHotNews(3)) != 0 {
		t.Fatal("expected empty top news")
	}
}

func TestStrongClassification(t *testing.T) {
	r := ScoringResult{Signal: SignalBuy, Confidence: ConfidenceHigh}
	if !r.IsStrongBuy() || r.IsStrongSell() {
		t.Fatalf("expected strong buy: %+v", r)
	}
	r.Confidence = ConfidenceMedium
	if r.IsStrongBuy() {
		t.Fatal("medium confidence must not be strong")
	}
}

func TestCoinGeckoReverseMapping(t *testing.T) {
	for _, sym := range SupportedSymbols {
		id, ok := CoinGeckoID[sym]
		if !ok {
			t.Fatalf("missing coingecko id for %s", sym)
		}
		if CoinGeckoIDToSymbol[id] != sym {
			t.Fatalf("reverse mapping broken for %s", sym)
		}
	}
}
