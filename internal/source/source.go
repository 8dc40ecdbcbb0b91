// Package source defines where indicator snapshots come from. Every
// category has a live implementation and a fixed sample implementation;
// Build picks one per category from configuration.
package source

import (
	"context"
	"errors"

	"alpha-signal/internal/domain"
)

// ErrUnavailable is returned by sources that have nothing to report.
var ErrUnavailable = errors.New("source unavailable")

type SocialSource interface {
	Social(ctx context.Context, symbol string) (domain.SocialSentiment, error)
}

type NewsSource interface {
	News(ctx context.Context, symbol string) (domain.NewsImpact, error)
}

type MacroSource interface {
	Macro(ctx context.Context) (domain.MacroSnapshot, error)
}

type FearGreedSource interface {
	FearGreed(ctx context.Context) (*domain.FearGreed, error)
}

type TVLSource interface {
	DefiTVL(ctx context.Context) (*domain.DefiTVL, error)
}

// UniverseSource resolves the top-N symbols by market capitalization.
type UniverseSource interface {
	TopSymbols(ctx context.Context, n int) ([]string, error)
}

// Set bundles one source per category. FearGreed and TVL may be nil when
// the auxiliary indicators are disabled.
type Set struct {
	Social    SocialSource
	News      NewsSource
	Macro     MacroSource
	FearGreed FearGreedSource
	TVL       TVLSource
	Universe  UniverseSource

	// Modes reports "live", "sample" or "disabled" per category.
	Modes map[string]string
}

const (
	ModeLive     = "live"
	ModeSample   = "sample"
	ModeDisabled = "disabled"
)
