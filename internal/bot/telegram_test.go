package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/signal"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	b, err := StartTelegramBot("", nil)
	if err != nil || b != nil {
		t.Fatalf("expected skipped startup, got bot=%v err=%v", b, err)
	}
}

func TestFormatResult(t *testing.T) {
	got := FormatResult(domain.ScoringResult{
		Symbol:         "BTC",
		BuyScore:       2.62,
		SellScore:      0.25,
		NetScore:       2.38,
		SizeMultiplier: 1,
		Confidence:     domain.ConfidenceMedium,
		Signal:         domain.SignalBuy,
		Signals:        []string{"Strong futures inflow"},
		Warnings:       []string{"High VIX"},
	})
	want := "BTC: BUY (MEDIUM)\nBuy 2.62 | Sell 0.25 | Net +2.38 | Size x1.00\n+ Strong futures inflow\n! High VIX"
	if got != want {
		t.Fatalf("unexpected format:\n%s\nwant:\n%s", got, want)
	}

	if !strings.Contains(FormatResult(domain.ScoringResult{Symbol: "ETH"}), "No signals") {
		t.Fatal("expected no-signals marker")
	}
}

func TestSignalReply(t *testing.T) {
	analyzer := &analyzerStub{batch: domain.Batch{
		RunID:      "run",
		FinishedAt: time.Now().Add(-2 * time.Hour),
		Results:    []domain.ScoringResult{{Symbol: "BTC", Signal: domain.SignalSell}},
	}}

	if got := SignalReply(analyzer, nil); !strings.HasPrefix(got, "Usage") {
		t.Fatalf("expected usage, got %q", got)
	}

	got := SignalReply(analyzer, []string{"btc"})
	if !strings.HasPrefix(got, "BTC: SELL") || !strings.Contains(got, "Updated 2 hours ago") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if analyzer.analyzed != 0 {
		t.Fatal("expected batch hit without on-demand scoring")
	}

	got = SignalReply(analyzer, []string{"sol"})
	if !strings.HasPrefix(got, "SOL: NEUTRAL") || analyzer.analyzed != 1 {
		t.Fatalf("expected on-demand result, got %q", got)
	}

	analyzer.analyzeErr = errors.New("offline")
	if got := SignalReply(analyzer, []string{"ada"}); !strings.Contains(got, "Error analyzing ADA: offline") {
		t.Fatalf("unexpected error reply: %q", got)
	}
}

func TestTopReply(t *testing.T) {
	strong := func(symbol string, net float64) domain.ScoringResult {
		return domain.ScoringResult{Symbol: symbol, NetScore: net, SizeMultiplier: 1.5}
	}
	analyzer := &analyzerStub{batch: domain.Batch{
		RunID:      "0123456789abcdef",
		FinishedAt: time.Now(),
		Results:    make([]domain.ScoringResult, 3),
		Recommendations: domain.Recommendations{
			StrongBuy: []domain.ScoringResult{strong("BTC", 3.4), strong("ETH", 3.1)},
		},
	}}

	got := TopReply(analyzer, []string{"1"})
	if !strings.Contains(got, "Run 01234567, 3 symbols") {
		t.Fatalf("missing header: %q", got)
	}
	if !strings.Contains(got, "1st BTC net +3.40 size x1.50") || strings.Contains(got, "ETH") {
		t.Fatalf("unexpected buy list: %q", got)
	}
	if !strings.Contains(got, "No strong SELL recommendations.") {
		t.Fatalf("missing empty sell message: %q", got)
	}

	if got := TopReply(analyzer, []string{"x"}); got != "Usage: /top 5" {
		t.Fatalf("unexpected usage reply: %q", got)
	}
	if got := TopReply(&analyzerStub{}, nil); got != "No analysis available yet." {
		t.Fatalf("unexpected reply without batch: %q", got)
	}
}

type analyzerStub struct {
	batch      domain.Batch
	analyzed   int
	analyzeErr error
}

func (s *analyzerStub) Latest(context.Context) (domain.Batch, error) {
	if s.batch.RunID == "" {
		return domain.Batch{}, errors.New("no batch")
	}
	return s.batch, nil
}

func (s *analyzerStub) Analyze(_ context.Context, symbol string, _ signal.FuturesSet, _ float64) (domain.ScoringResult, error) {
	s.analyzed++
	if s.analyzeErr != nil {
		return domain.ScoringResult{}, s.analyzeErr
	}
	return domain.ScoringResult{Symbol: symbol, Signal: domain.SignalNeutral, Confidence: domain.ConfidenceLow}, nil
}
