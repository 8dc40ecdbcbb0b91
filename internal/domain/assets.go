package domain

// CoinGeckoID maps tracked symbols to CoinGecko identifiers. Used when the
// top-N universe cannot be fetched.
var CoinGeckoID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
	"ARB":   "arbitrum",
}

// CoinGeckoIDToSymbol is the reverse mapping.
var CoinGeckoIDToSymbol map[string]string

func init() {
	CoinGeckoIDToSymbol = make(map[string]string, len(CoinGeckoID))
	for sym, id := range CoinGeckoID {
		CoinGeckoIDToSymbol[id] = sym
	}
}

// SupportedSymbols is the default analysis universe, in display order.
var SupportedSymbols = []string{
	"BTC", "ETH", "SOL", "BNB", "XRP", "ADA",
	"DOGE", "DOT", "AVAX", "LINK", "MATIC", "ARB",
}
