package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/service"
	"alpha-signal/internal/signal"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultRecommendationLimit = 5

type Analyzer interface {
	Run(ctx context.Context, req service.AnalysisRequest) (domain.Batch, error)
	Latest(ctx context.Context) (domain.Batch, error)
}

type AnalyzeInput struct {
	Symbols   []string              `json:"symbols,omitempty" jsonschema:"symbols to score, e.g. BTC or ETH"`
	Top       int                   `json:"top,omitempty" jsonschema:"score the top N assets by market cap when symbols is empty"`
	Threshold float64               `json:"threshold,omitempty" jsonschema:"minimum absolute net score for a BUY or SELL signal, default 2.0"`
	Futures   []signal.FuturesEntry `json:"futures,omitempty" jsonschema:"futures fund-flow records; their pairs are scored when symbols and top are empty"`
}

type ResultSummary struct {
	Symbol         string   `json:"symbol"`
	BuyScore       float64  `json:"buy_score"`
	SellScore      float64  `json:"sell_score"`
	NetScore       float64  `json:"net_score"`
	SizeMultiplier float64  `json:"size_multiplier"`
	Confidence     string   `json:"confidence"`
	Signal         string   `json:"signal"`
	Signals        []string `json:"signals"`
	Warnings       []string `json:"warnings"`
}

type AnalyzeOutput struct {
	RunID      string          `json:"run_id"`
	FinishedAt string          `json:"finished_at"`
	Results    []ResultSummary `json:"results"`
	StrongBuy  []string        `json:"strong_buy"`
	StrongSell []string        `json:"strong_sell"`
	Errors     []string        `json:"errors,omitempty"`
}

type RecommendationsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"entries per list, default 5"`
}

type RecommendationsOutput struct {
	RunID      string          `json:"run_id"`
	FinishedAt string          `json:"finished_at"`
	StrongBuy  []ResultSummary `json:"strong_buy"`
	StrongSell []ResultSummary `json:"strong_sell"`
	Messages   []string        `json:"messages,omitempty"`
}

type toolset struct {
	analyzer Analyzer
	timeout  time.Duration
}

func registerTools(server *mcp.Server, tools *toolset) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_symbols",
		Description: "Score crypto assets into BUY/SELL signals from social, news, futures flow and macro data.",
	}, tools.analyzeSymbols)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recommendations",
		Description: "List the strong BUY and SELL recommendations of the latest analysis run.",
	}, tools.recommendations)
}

func (t *toolset) analyzeSymbols(ctx context.Context, _ *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
	if in.Top < 0 || in.Threshold < 0 {
		return nil, AnalyzeOutput{}, errors.New("top and threshold must not be negative")
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	batch, err := t.analyzer.Run(ctx, service.AnalysisRequest{
		Symbols:   in.Symbols,
		Top:       in.Top,
		Threshold: in.Threshold,
		Futures:   signal.ParseFuturesPayload(in.Futures),
	})
	if err != nil {
		return nil, AnalyzeOutput{}, fmt.Errorf("analyze: %w", err)
	}

	out := AnalyzeOutput{
		RunID:      batch.RunID,
		FinishedAt: batch.FinishedAt.Format(time.RFC3339),
		Results:    summarize(batch.Results),
		StrongBuy:  symbols(batch.Recommendations.StrongBuy),
		StrongSell: symbols(batch.Recommendations.StrongSell),
		Errors:     batch.Errors,
	}
	return nil, out, nil
}

func (t *toolset) recommendations(ctx context.Context, _ *mcp.CallToolRequest, in RecommendationsInput) (*mcp.CallToolResult, RecommendationsOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	batch, err := t.analyzer.Latest(ctx)
	if errors.Is(err, service.ErrNoBatch) {
		return nil, RecommendationsOutput{}, errors.New("no analysis has run yet; call analyze_symbols first")
	}
	if err != nil {
		return nil, RecommendationsOutput{}, err
	}

	rec := batch.Recommendations.Top(limit)
	out := RecommendationsOutput{
		RunID:      batch.RunID,
		FinishedAt: batch.FinishedAt.Format(time.RFC3339),
		StrongBuy:  summarize(rec.StrongBuy),
		StrongSell: summarize(rec.StrongSell),
	}
	if len(out.StrongBuy) == 0 {
		out.Messages = append(out.Messages, "No strong BUY recommendations.")
	}
	if len(out.StrongSell) == 0 {
		out.Messages = append(out.Messages, "No strong SELL recommendations.")
	}
	return nil, out, nil
}

func (t *toolset) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func summarize(results []domain.ScoringResult) []ResultSummary {
	out := make([]ResultSummary, 0, len(results))
	for _, r := range results {
		out = append(out, ResultSummary{
			Symbol:         r.Symbol,
			BuyScore:       r.BuyScore,
			SellScore:      r.SellScore,
			NetScore:       r.NetScore,
			SizeMultiplier: r.SizeMultiplier,
			Confidence:     string(r.Confidence),
			Signal:         string(r.Signal),
			Signals:        nonNil(r.Signals),
			Warnings:       nonNil(r.Warnings),
		})
	}
	return out
}

func symbols(results []domain.ScoringResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Symbol)
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
