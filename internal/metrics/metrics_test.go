package metrics

import (
	"errors"
	"testing"
	"time"

	"alpha-signal/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
}

func TestRecordFallback(t *testing.T) {
	before := testutil.ToFloat64(SourceFallbacks.WithLabelValues("social"))
	RecordFallback("social")
	if got := testutil.ToFloat64(SourceFallbacks.WithLabelValues("social")); got != before+1 {
		t.Fatalf("expected fallback counter to increase by one, got %v -> %v", before, got)
	}
}

func TestRecordRunCountsSignals(t *testing.T) {
	beforeBuy := testutil.ToFloat64(SymbolsScored.WithLabelValues("BUY"))
	beforeErr := testutil.ToFloat64(AnalysisRuns.WithLabelValues("error"))

	RecordRun(time.Second, []domain.ScoringResult{{Signal: domain.SignalBuy}, {Signal: domain.SignalBuy}}, 1, errors.New("partial"))

	if got := testutil.ToFloat64(SymbolsScored.WithLabelValues("BUY")); got != beforeBuy+2 {
		t.Fatalf("expected two BUY results recorded, got %v", got-beforeBuy)
	}
	if got := testutil.ToFloat64(AnalysisRuns.WithLabelValues("error")); got != beforeErr+1 {
		t.Fatalf("expected error run recorded")
	}
}
