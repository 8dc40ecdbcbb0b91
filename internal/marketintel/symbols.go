package marketintel

import (
	"regexp"
	"sort"
	"strings"

	"alpha-signal/internal/domain"
)

var symbolTokenRx = regexp.MustCompile(`\$?[A-Za-z]{2,10}`)

var symbolAlias = map[string][]string{
	"BTC":   {"btc", "bitcoin", "xbt"},
	"ETH":   {"eth", "ethereum", "ether"},
	"SOL":   {"sol", "solana"},
	"BNB":   {"bnb", "binance coin"},
	"XRP":   {"xrp", "ripple", "xrpl"},
	"ADA":   {"ada", "cardano"},
	"DOGE":  {"doge", "dogecoin"},
	"DOT":   {"polkadot"},
	"AVAX":  {"avax", "avalanche"},
	"LINK":  {"chainlink"},
	"MATIC": {"matic", "polygon"},
	"ARB":   {"arbitrum"},
}

var subredditSymbolHint = map[string]string{
	"bitcoin":        "BTC",
	"ethereum":       "ETH",
	"solana":         "SOL",
	"cardano":        "ADA",
	"ripple":         "XRP",
	"xrpl":           "XRP",
	"dogecoin":       "DOGE",
	"cryptocurrency": "",
}

// ExtractSymbolsFromContent returns the tracked symbols a headline talks
// about, sorted.
func ExtractSymbolsFromContent(title, excerpt string, metadata map[string]any) []string {
	original := strings.Join([]string{title, excerpt}, " ")
	text := strings.ToLower(original)
	words := wordSet(text)
	matched := make(map[string]struct{}, 8)

	// Tickers count only when written in capitals or with a cashtag.
	for _, raw := range symbolTokenRx.FindAllString(original, -1) {
		cashtag := strings.HasPrefix(raw, "$")
		token := strings.TrimPrefix(raw, "$")
		if !cashtag && token != strings.ToUpper(token) {
			continue
		}
		token = strings.ToUpper(token)
		if _, ok := domain.CoinGeckoID[token]; ok {
			matched[token] = struct{}{}
		}
	}

	for symbol, aliases := range symbolAlias {
		for _, alias := range aliases {
			if containsPhrase(text, words, alias) {
				matched[symbol] = struct{}{}
				break
			}
		}
	}

	if metadata != nil {
		if subreddit, ok := metadata["subreddit"].(string); ok {
			if symbol, found := subredditSymbolHint[strings.ToLower(strings.TrimSpace(subreddit))]; found && symbol != "" {
				matched[symbol] = struct{}{}
			}
		}
	}

	if len(matched) == 0 {
		return nil
	}
	out := make([]string, 0, len(matched))
	for symbol := range matched {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// MentionsSymbol reports whether a headline is about symbol. Symbols outside
// the tracked set match on the bare ticker as a whole word.
func MentionsSymbol(symbol, title, excerpt string, metadata map[string]any) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return false
	}
	for _, s := range ExtractSymbolsFromContent(title, excerpt, metadata) {
		if s == symbol {
			return true
		}
	}
	if _, tracked := domain.CoinGeckoID[symbol]; tracked {
		return false
	}
	_, ok := wordSet(strings.ToLower(title + " " + excerpt))[strings.ToLower(symbol)]
	return ok
}

func wordSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}

func containsPhrase(text string, words map[string]struct{}, alias string) bool {
	if strings.Contains(alias, " ") {
		return strings.Contains(text, alias)
	}
	_, ok := words[alias]
	return ok
}
