package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"testing"

	"alpha-signal/internal/domain"
)

func fredBody(values ...string) string {
	body := `{"observations":[`
	for i, v := range values {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"date":"2026-02-%02d","value":%q}`, 20-i, v)
	}
	return body + `]}`
}

func TestFREDMacro(t *testing.T) {
	bodies := map[string]string{
		"VIXCLS":    fredBody("30", ".", "28", "27", "26", "25", "24"),
		"DTWEXBGS":  fredBody("120", "120", "120", "120", "120", "120"),
		"DGS10":     fredBody("4.8", "4.7", "4.6", "4.6", "4.5", "4.5"),
		"SP500":     fredBody("4950", "5000"),
		"NASDAQCOM": fredBody("15680", "16000"),
	}
	p := NewFREDProvider("https://fred.example/fred", "key", DefaultFREDSeries(), 0, noopTracer())
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/fred/series/observations" || req.URL.Query().Get("api_key") != "key" {
			t.Fatalf("unexpected request: %s", req.URL.String())
		}
		body, ok := bodies[req.URL.Query().Get("series_id")]
		if !ok {
			t.Fatalf("unexpected series: %s", req.URL.Query().Get("series_id"))
		}
		return jsonResponse(http.StatusOK, body), nil
	})}

	m, err := p.Macro(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.VIX != 30 || m.VIXTrend != domain.TrendUp {
		t.Fatalf("unexpected vix: %v %v", m.VIX, m.VIXTrend)
	}
	if m.DXY != 120 || m.DXYTrend != domain.TrendFlat {
		t.Fatalf("unexpected dxy: %v %v", m.DXY, m.DXYTrend)
	}
	if m.Treasury10Y != 4.8 || m.YieldTrend != domain.TrendUp {
		t.Fatalf("unexpected yield: %v %v", m.Treasury10Y, m.YieldTrend)
	}
	if math.Abs(m.SP500ChangePct+1) > 1e-9 || math.Abs(m.NasdaqChangePct+2) > 1e-9 {
		t.Fatalf("unexpected equity moves: %v %v", m.SP500ChangePct, m.NasdaqChangePct)
	}
	if m.RiskAppetite != domain.RiskAppetiteLow {
		t.Fatalf("expected LOW risk appetite, got %s", m.RiskAppetite)
	}
}

func TestFREDMacroRequiresKey(t *testing.T) {
	p := NewFREDProvider("https://fred.example", "", DefaultFREDSeries(), 0, noopTracer())
	if _, err := p.Macro(context.Background()); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestFREDMacroEmptySeries(t *testing.T) {
	p := NewFREDProvider("https://fred.example", "key", DefaultFREDSeries(), 0, noopTracer())
	p.client = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, fredBody(".", ".")), nil
	})}
	if _, err := p.Macro(context.Background()); err == nil {
		t.Fatal("expected error for series without values")
	}
}

func TestClassifyTrend(t *testing.T) {
	if got := classifyTrend([]float64{90, 95, 100}, 0.05); got != domain.TrendDown {
		t.Fatalf("expected DOWN, got %s", got)
	}
	if got := classifyTrend([]float64{101, 100}, 0.05); got != domain.TrendFlat {
		t.Fatalf("expected FLAT, got %s", got)
	}
	if got := classifyTrend([]float64{101}, 0.05); got != domain.TrendFlat {
		t.Fatalf("expected FLAT for single value, got %s", got)
	}
}

func TestDeriveRiskAppetite(t *testing.T) {
	if got := deriveRiskAppetite(domain.MacroSnapshot{VIX: 12, SP500ChangePct: 0.4}); got != domain.RiskAppetiteHigh {
		t.Fatalf("expected HIGH, got %s", got)
	}
	if got := deriveRiskAppetite(domain.MacroSnapshot{VIX: 18}); got != domain.RiskAppetiteMedium {
		t.Fatalf("expected MEDIUM, got %s", got)
	}
}
