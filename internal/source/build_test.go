package source

import (
	"context"
	"testing"

	"alpha-signal/internal/config"
	"alpha-signal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Sources.FearGreedEnabled = true
	cfg.Sources.DefiTVLEnabled = true
	cfg.Sources.NewsFeeds = []string{"https://feed.example/rss"}
	return cfg
}

func TestBuildWithoutCredentialsUsesSample(t *testing.T) {
	cfg := testConfig()
	cfg.Sources.SampleOnly = true

	set, err := Build(cfg, noop.NewTracerProvider().Tracer("test"))
	require.NoError(t, err)

	for _, category := range []string{domain.ComponentSocial, domain.ComponentNews, domain.ComponentMacro, domain.ComponentFearGreed, domain.ComponentDefiTVL, "universe"} {
		assert.Equal(t, ModeSample, set.Modes[category], category)
	}
	social, err := set.Social.Social(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, 45, social.AltRank)
}

func TestBuildSelectsLiveByCredential(t *testing.T) {
	cfg := testConfig()
	cfg.Sources.LunarCrushAPIKey = "lc"
	cfg.Sources.CryptoPanicToken = "cp"
	cfg.Sources.FearGreedEnabled = false

	set, err := Build(cfg, noop.NewTracerProvider().Tracer("test"))
	require.NoError(t, err)

	assert.Equal(t, ModeLive, set.Modes[domain.ComponentSocial])
	assert.Equal(t, ModeLive, set.Modes[domain.ComponentNews])
	assert.Equal(t, ModeSample, set.Modes[domain.ComponentMacro])
	assert.Equal(t, ModeDisabled, set.Modes[domain.ComponentFearGreed])
	assert.Equal(t, ModeLive, set.Modes[domain.ComponentDefiTVL])
	assert.Nil(t, set.FearGreed)
	assert.NotNil(t, set.TVL)
	_, isSample := set.Macro.(*Sample)
	assert.True(t, isSample)
}
