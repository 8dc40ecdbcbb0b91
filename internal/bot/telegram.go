package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/signal"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

const (
	defaultTop     = 5
	maxTop         = 20
	commandTimeout = 30 * time.Second
)

// Analyzer is the read side of the analysis service used by the bot.
type Analyzer interface {
	Latest(ctx context.Context) (domain.Batch, error)
	Analyze(ctx context.Context, symbol string, futures signal.FuturesSet, threshold float64) (domain.ScoringResult, error)
}

// StartTelegramBot registers the commands and starts long polling in the
// background. An empty token skips startup and returns a nil bot.
func StartTelegramBot(token string, analyzer Analyzer) (*tele.Bot, error) {
	if token == "" {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/signal", func(c tele.Context) error {
		return c.Send(SignalReply(analyzer, c.Args()))
	})
	b.Handle("/top", func(c tele.Context) error {
		return c.Send(TopReply(analyzer, c.Args()))
	})

	log.Info().Msg("Telegram bot started")
	go b.Start()
	return b, nil
}

// SignalReply answers /signal SYMBOL from the latest batch, scoring the
// symbol on demand when the batch does not contain it.
func SignalReply(analyzer Analyzer, args []string) string {
	if len(args) == 0 {
		return "Usage: /signal BTC"
	}
	symbol := strings.ToUpper(strings.TrimSpace(args[0]))
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if batch, err := analyzer.Latest(ctx); err == nil {
		if res, ok := batch.Result(symbol); ok {
			return FormatResult(res) + "\nUpdated " + humanize.Time(batch.FinishedAt)
		}
	}
	res, err := analyzer.Analyze(ctx, symbol, signal.FuturesSet{}, 0)
	if err != nil {
		return fmt.Sprintf("Error analyzing %s: %v", symbol, err)
	}
	return FormatResult(res) + "\nScored just now (no futures data)"
}

// TopReply answers /top [N] with the strongest recommendations of the latest batch.
func TopReply(analyzer Analyzer, args []string) string {
	n := defaultTop
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return "Usage: /top 5"
		}
		n = min(v, maxTop)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	batch, err := analyzer.Latest(ctx)
	if err != nil {
		return "No analysis available yet."
	}
	rec := batch.Recommendations.Top(n)

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s, %d symbols, updated %s\n", shortID(batch.RunID), len(batch.Results), humanize.Time(batch.FinishedAt))
	writeList(&b, "Strong BUY", "No strong BUY recommendations.", rec.StrongBuy)
	writeList(&b, "Strong SELL", "No strong SELL recommendations.", rec.StrongSell)
	return strings.TrimRight(b.String(), "\n")
}

// FormatResult renders one result as a short plain-text message.
func FormatResult(r domain.ScoringResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (%s)\n", r.Symbol, r.Signal, r.Confidence)
	fmt.Fprintf(&b, "Buy %.2f | Sell %.2f | Net %+.2f | Size x%.2f", r.BuyScore, r.SellScore, r.NetScore, r.SizeMultiplier)
	if len(r.Signals) == 0 {
		b.WriteString("\nNo signals")
	}
	for _, s := range r.Signals {
		b.WriteString("\n+ " + s)
	}
	for _, w := range r.Warnings {
		b.WriteString("\n! " + w)
	}
	return b.String()
}

func writeList(b *strings.Builder, title, empty string, results []domain.ScoringResult) {
	b.WriteString(title + "\n")
	if len(results) == 0 {
		b.WriteString("  " + empty + "\n")
		return
	}
	for i, r := range results {
		fmt.Fprintf(b, "  %s %s net %+.2f size x%.2f\n", humanize.Ordinal(i+1), r.Symbol, r.NetScore, r.SizeMultiplier)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
