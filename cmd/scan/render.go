package main

import (
	"fmt"
	"strings"

	"alpha-signal/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	buyStyle    = cellStyle.Foreground(lipgloss.Color("10")).Bold(true)
	sellStyle   = cellStyle.Foreground(lipgloss.Color("9")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var summaryHeaders = []string{"SYMBOL", "BUY", "SELL", "NET", "SIZE", "CONFIDENCE", "SIGNAL", "TOP SIGNAL"}

// renderSummary builds the one-row-per-symbol results table.
func renderSummary(results []domain.ScoringResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		top := "No signals"
		if len(r.Signals) > 0 {
			top = r.Signals[0]
		}
		rows = append(rows, []string{
			r.Symbol,
			fmt.Sprintf("%.2f", r.BuyScore),
			fmt.Sprintf("%.2f", r.SellScore),
			fmt.Sprintf("%.2f", r.NetScore),
			fmt.Sprintf("%.2f", r.SizeMultiplier),
			string(r.Confidence),
			string(r.Signal),
			top,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(summaryHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			switch {
			case col >= 1 && col <= 4:
				return numberStyle
			case col == 6 && row < len(rows):
				switch domain.SignalType(rows[row][col]) {
				case domain.SignalBuy:
					return buyStyle
				case domain.SignalSell:
					return sellStyle
				}
			}
			return cellStyle
		})
	return t.Render()
}

// renderRecommendations lists strong buys and sells, or says there are none.
func renderRecommendations(rec domain.Recommendations) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TRADE RECOMMENDATIONS"))
	b.WriteString("\n")
	writeRecommendations(&b, "STRONG BUY", buyStyle, rec.StrongBuy)
	writeRecommendations(&b, "STRONG SELL", sellStyle, rec.StrongSell)
	return strings.TrimRight(b.String(), "\n")
}

func writeRecommendations(b *strings.Builder, title string, style lipgloss.Style, results []domain.ScoringResult) {
	if len(results) == 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("No %s recommendations.", strings.ToLower(title))))
		b.WriteString("\n")
		return
	}
	b.WriteString(style.UnsetPadding().Render(fmt.Sprintf("%s (%d)", title, len(results))))
	b.WriteString("\n")
	for _, r := range results {
		fmt.Fprintf(b, "  %s: net %.2f, size %.2fx\n", r.Symbol, r.NetScore, r.SizeMultiplier)
	}
}
