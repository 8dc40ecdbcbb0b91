package provider

import (
	"strings"
	"time"
)

// ContentItem is a headline or post fetched from a news or community source.
type ContentItem struct {
	Source       string
	SourceItemID string
	Title        string
	URL          string
	Excerpt      string
	Author       string
	PublishedAt  time.Time
	// Votes carries community reactions when the source exposes them.
	Votes    *Votes
	Metadata map[string]any
}

type Votes struct {
	Positive  int
	Negative  int
	Important int
}

// Sentiment maps votes to [-1, 1]. ok is false when nobody voted.
func (v *Votes) Sentiment() (score float64, ok bool) {
	if v == nil {
		return 0, false
	}
	total := v.Positive + v.Negative
	if total == 0 {
		return 0, false
	}
	return float64(v.Positive-v.Negative) / float64(total), true
}

// sanitizeText collapses whitespace and truncates to maxLen bytes.
func sanitizeText(in string, maxLen int) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	in = strings.Join(strings.Fields(in), " ")
	if maxLen > 0 && len(in) > maxLen {
		in = in[:maxLen]
	}
	return in
}
