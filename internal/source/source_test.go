package source

import (
	"context"
	"errors"
	"testing"

	"alpha-signal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleValues(t *testing.T) {
	s, err := NewSample()
	require.NoError(t, err)
	ctx := context.Background()

	social, err := s.Social(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 1500, social.TwitterMentions)
	assert.Equal(t, 68.5, social.GalaxyScore)
	assert.Equal(t, 45, social.AltRank)
	assert.Equal(t, 0.72, social.InfluencerSentiment)

	news, err := s.News(ctx, "ETH")
	require.NoError(t, err)
	assert.Equal(t, 25, news.ArticleCount24h)
	assert.Equal(t, 3, news.HighImpactCount)
	require.Len(t, news.HotNews, 2)
	assert.Equal(t, "Major partnership announced for ETH", news.HotNews[0].Headline)
	assert.Equal(t, 8, news.HotNews[0].Impact)
	assert.Equal(t, -0.6, news.HotNews[1].Sentiment)

	macro, err := s.Macro(ctx)
	require.NoError(t, err)
	assert.Equal(t, 18.5, macro.VIX)
	assert.Equal(t, domain.TrendDown, macro.VIXTrend)
	assert.Equal(t, domain.TrendUp, macro.YieldTrend)
	assert.Equal(t, domain.RiskAppetiteMedium, macro.RiskAppetite)

	fg, err := s.FearGreed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 55, fg.Value)

	tvl, err := s.DefiTVL(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.5, tvl.Change7dPct)
}

func TestSampleNewsDoesNotShareHeadlines(t *testing.T) {
	s := MustSample()
	btc, _ := s.News(context.Background(), "BTC")
	eth, _ := s.News(context.Background(), "ETH")
	assert.Contains(t, btc.HotNews[0].Headline, "BTC")
	assert.Contains(t, eth.HotNews[0].Headline, "ETH")
}

func TestSampleTopSymbols(t *testing.T) {
	s := MustSample()
	got, err := s.TopSymbols(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH", "SOL"}, got)

	all, _ := s.TopSymbols(context.Background(), 1000)
	assert.Len(t, all, len(domain.SupportedSymbols))
}

func TestParseSampleRejectsGarbage(t *testing.T) {
	_, err := ParseSample([]byte("social: [unterminated"))
	assert.Error(t, err)
}

type failingSource struct {
	calls int
}

func (f *failingSource) Social(context.Context, string) (domain.SocialSentiment, error) {
	f.calls++
	return domain.SocialSentiment{}, errors.New("boom")
}

func (f *failingSource) News(context.Context, string) (domain.NewsImpact, error) {
	f.calls++
	return domain.NewsImpact{}, errors.New("boom")
}

func (f *failingSource) Macro(context.Context) (domain.MacroSnapshot, error) {
	f.calls++
	return domain.MacroSnapshot{}, errors.New("boom")
}

func (f *failingSource) FearGreed(context.Context) (*domain.FearGreed, error) {
	f.calls++
	return nil, errors.New("boom")
}

func (f *failingSource) DefiTVL(context.Context) (*domain.DefiTVL, error) {
	f.calls++
	return nil, errors.New("boom")
}

func (f *failingSource) TopSymbols(context.Context, int) ([]string, error) {
	f.calls++
	return nil, errors.New("boom")
}

func TestGuardsSubstituteNeutralSnapshots(t *testing.T) {
	src := &failingSource{}
	ctx := context.Background()
	opts := BreakerOptions{ConsecutiveFailures: 10}

	social, err := GuardSocial(src, opts).Social(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, domain.NeutralSocial(), social)

	news, err := GuardNews(src, opts).News(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, domain.NeutralNews(), news)

	macro, err := GuardMacro(src, opts).Macro(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.NeutralMacro(), macro)

	fg, err := GuardFearGreed(src, opts).FearGreed(ctx)
	require.NoError(t, err)
	assert.Nil(t, fg)

	tvl, err := GuardTVL(src, opts).DefiTVL(ctx)
	require.NoError(t, err)
	assert.Nil(t, tvl)
}

func TestGuardOpensBreaker(t *testing.T) {
	src := &failingSource{}
	g := GuardMacro(src, BreakerOptions{ConsecutiveFailures: 3})
	for i := 0; i < 5; i++ {
		_, err := g.Macro(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, src.calls, "open breaker must stop calling the live source")
}

type staticSocial struct {
	value domain.SocialSentiment
}

func (s staticSocial) Social(context.Context, string) (domain.SocialSentiment, error) {
	return s.value, nil
}

func TestGuardPassesThroughLiveData(t *testing.T) {
	want := domain.SocialSentiment{GalaxyScore: 91, AltRank: 3}
	got, err := GuardSocial(staticSocial{value: want}, BreakerOptions{}).Social(context.Background(), "SOL")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGuardUniverseFallsBack(t *testing.T) {
	u := GuardUniverse(&failingSource{}, MustSample(), BreakerOptions{})
	got, err := u.TopSymbols(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH"}, got)
}
