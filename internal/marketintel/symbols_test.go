package marketintel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSymbolsFromContentKeywords(t *testing.T) {
	symbols := ExtractSymbolsFromContent("Bitcoin and ETH rally", "$ADA joins move", nil)
	assert.Equal(t, []string{"ADA", "BTC", "ETH"}, symbols)
}

func TestExtractSymbolsFromContentSubredditHint(t *testing.T) {
	symbols := ExtractSymbolsFromContent("Daily thread", "no explicit token", map[string]any{"subreddit": "Ripple"})
	assert.Equal(t, []string{"XRP"}, symbols)
}

func TestExtractSymbolsIgnoresSubstrings(t *testing.T) {
	symbols := ExtractSymbolsFromContent("Solution providers link up", "a dotted line", nil)
	assert.Empty(t, symbols)
}

func TestMentionsSymbol(t *testing.T) {
	assert.True(t, MentionsSymbol("btc", "Bitcoin ETF inflows", "", nil))
	assert.False(t, MentionsSymbol("ETH", "Bitcoin ETF inflows", "", nil))
	assert.True(t, MentionsSymbol("PEPE", "PEPE jumps 20%", "", nil))
	assert.False(t, MentionsSymbol("PEPE", "Pepper prices", "", nil))
	assert.False(t, MentionsSymbol("", "anything", "", nil))
}
