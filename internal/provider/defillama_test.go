package provider

import (
	"context"
	"math"
	"net/http"
	"testing"
)

func TestDefiLlamaTVL(t *testing.T) {
	p := NewDefiLlamaProvider("https://llama.example", 0, noopTracer())
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v2/historicalChainTvl" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		body := `[{"date":8,"tvl":103},{"date":1,"tvl":100},{"date":2,"tvl":90},{"date":3,"tvl":90},{"date":4,"tvl":90},{"date":5,"tvl":90},{"date":6,"tvl":90},{"date":7,"tvl":100}]`
		return jsonResponse(http.StatusOK, body), nil
	})}

	tvl, err := p.DefiTVL(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tvl.TotalTVL != 103 {
		t.Fatalf("unexpected total: %v", tvl.TotalTVL)
	}
	if math.Abs(tvl.Change24hPct-3) > 1e-9 || math.Abs(tvl.Change7dPct-3) > 1e-9 {
		t.Fatalf("unexpected changes: %+v", tvl)
	}
}

func TestDefiLlamaTooFewPoints(t *testing.T) {
	p := NewDefiLlamaProvider("", 0, noopTracer())
	p.client = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `[{"date":1,"tvl":1}]`), nil
	})}
	if _, err := p.DefiTVL(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
