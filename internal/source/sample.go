package source

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"alpha-signal/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sampleYAML []byte

type sampleFixture struct {
	Social    domain.SocialSentiment `yaml:"social"`
	News      domain.NewsImpact      `yaml:"news"`
	Macro     domain.MacroSnapshot   `yaml:"macro"`
	FearGreed domain.FearGreed       `yaml:"fear_greed"`
	DefiTVL   domain.DefiTVL         `yaml:"defi_tvl"`
}

// Sample serves fixed, documented snapshots. It is used for any category
// whose live credential is not configured.
type Sample struct {
	fixture sampleFixture
	now     func() time.Time
}

func NewSample() (*Sample, error) {
	return ParseSample(sampleYAML)
}

// ParseSample builds a Sample from a YAML fixture in the embedded format.
func ParseSample(data []byte) (*Sample, error) {
	var f sampleFixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode sample fixture: %w", err)
	}
	return &Sample{fixture: f, now: time.Now}, nil
}

// MustSample panics if the embedded fixture is malformed.
func MustSample() *Sample {
	s, err := NewSample()
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Sample) Social(_ context.Context, _ string) (domain.SocialSentiment, error) {
	return s.fixture.Social, nil
}

func (s *Sample) News(_ context.Context, symbol string) (domain.NewsImpact, error) {
	out := s.fixture.News
	out.HotNews = make([]domain.HotNewsItem, len(s.fixture.News.HotNews))
	for i, item := range s.fixture.News.HotNews {
		item.Headline = strings.ReplaceAll(item.Headline, "{symbol}", symbol)
		out.HotNews[i] = item
	}
	return out, nil
}

func (s *Sample) Macro(_ context.Context) (domain.MacroSnapshot, error) {
	return s.fixture.Macro, nil
}

func (s *Sample) FearGreed(_ context.Context) (*domain.FearGreed, error) {
	fg := s.fixture.FearGreed
	fg.Timestamp = s.now().UTC().Truncate(time.Hour)
	return &fg, nil
}

func (s *Sample) DefiTVL(_ context.Context) (*domain.DefiTVL, error) {
	tvl := s.fixture.DefiTVL
	return &tvl, nil
}

// TopSymbols returns the first n supported symbols.
func (s *Sample) TopSymbols(_ context.Context, n int) ([]string, error) {
	if n <= 0 || n > len(domain.SupportedSymbols) {
		n = len(domain.SupportedSymbols)
	}
	return append([]string(nil), domain.SupportedSymbols[:n]...), nil
}
