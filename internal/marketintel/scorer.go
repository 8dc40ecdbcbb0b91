package marketintel

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

const heuristicModel = "lexicon:v2"

// Headline is one piece of news text to score.
type Headline struct {
	Title   string
	Excerpt string
}

// HeadlineScore rates one headline. Sentiment is in [-1, 1]. Impact is the
// 0..10 market-moving magnitude and only meaningful when ImpactRated is set;
// otherwise BuildImpact derives it from the text.
type HeadlineScore struct {
	Sentiment   float64
	Confidence  float64
	Impact      int
	ImpactRated bool
	Model       string
}

// BatchLLMScorer rates a batch of headlines. The returned map is keyed by
// position in items and may omit entries.
type BatchLLMScorer interface {
	ScoreBatch(ctx context.Context, items []Headline) (map[int]HeadlineScore, error)
}

type Scorer struct {
	llm       BatchLLMScorer
	batchSize int
}

// NewScorer rates with the lexicon and, when llm is non-nil, replaces those
// ratings batch by batch. A failing batch keeps its lexicon ratings.
func NewScorer(llm BatchLLMScorer, batchSize int) *Scorer {
	if batchSize <= 0 {
		batchSize = 24
	}
	return &Scorer{llm: llm, batchSize: batchSize}
}

// Score returns one rating per headline, aligned with items.
func (s *Scorer) Score(ctx context.Context, items []Headline) []HeadlineScore {
	out := make([]HeadlineScore, len(items))
	for i, h := range items {
		out[i] = LexiconScore(h)
	}
	if s.llm == nil {
		return out
	}

	for start := 0; start < len(items); start += s.batchSize {
		end := min(start+s.batchSize, len(items))
		rated, err := s.llm.ScoreBatch(ctx, items[start:end])
		if err != nil {
			log.Debug().Err(err).Int("batch_size", end-start).Msg("llm headline rating failed, keeping lexicon ratings")
			continue
		}
		for i, sc := range rated {
			if i < 0 || start+i >= end {
				continue
			}
			out[start+i] = sc
		}
	}
	return out
}

type weightedTerm struct {
	term   string
	weight float64
}

// Whole-word terms. Short or ambiguous words live here so "bear" does not
// match "bearing" and "ban" does not match "bank".
var lexiconWords = map[string]float64{
	"bull":    0.6,
	"bullish": 0.7,
	"gain":    0.4,
	"gains":   0.4,
	"bear":    -0.6,
	"bearish": -0.7,
	"ban":     -0.8,
	"bans":    -0.8,
	"sues":    -0.7,
	"dump":    -0.7,
	"dumps":   -0.7,
}

// Prefix terms, matched against the start of each word.
var lexiconPrefixes = []weightedTerm{
	{"approv", 0.8},
	{"surg", 0.8},
	{"soar", 0.8},
	{"rall", 0.7},
	{"breakout", 0.7},
	{"partnership", 0.6},
	{"adopt", 0.6},
	{"accumulat", 0.5},
	{"upgrade", 0.5},
	{"recover", 0.5},
	{"listing", 0.5},
	{"record", 0.3},
	{"hack", -1.0},
	{"exploit", -1.0},
	{"bankrupt", -1.0},
	{"fraud", -0.9},
	{"crash", -0.9},
	{"plung", -0.8},
	{"delist", -0.8},
	{"lawsuit", -0.7},
	{"reject", -0.7},
	{"liquidat", -0.6},
	{"selloff", -0.6},
	{"slump", -0.6},
	{"outage", -0.5},
	{"investigat", -0.5},
	{"concern", -0.4},
}

// LexiconScore rates a headline from weighted crypto-news terms. The summed
// weight is squashed with tanh, and confidence grows with the number of
// matched terms.
func LexiconScore(h Headline) HeadlineScore {
	words := wordSet(strings.ToLower(h.Title + " " + h.Excerpt))
	if len(words) == 0 {
		return HeadlineScore{Confidence: 0.2, Model: heuristicModel}
	}

	sum, hits := 0.0, 0
	for w := range words {
		if v, ok := lexiconWords[w]; ok {
			sum += v
			hits++
			continue
		}
		for _, t := range lexiconPrefixes {
			if strings.HasPrefix(w, t.term) {
				sum += t.weight
				hits++
				break
			}
		}
	}
	return HeadlineScore{
		Sentiment:  math.Tanh(sum),
		Confidence: clamp(0.3+0.15*float64(hits), 0.3, 0.75),
		Model:      heuristicModel,
	}
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAIScorer asks a chat model for sentiment, confidence and impact of
// each headline in one request per batch.
type OpenAIScorer struct {
	client chatCompleter
	model  string
}

// NewOpenAIScorer returns nil without an API key.
func NewOpenAIScorer(apiKey, model string) *OpenAIScorer {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIScorer{
		client: &openAIClient{client: openai.NewClient(option.WithAPIKey(apiKey))},
		model:  model,
	}
}

const headlinePrompt = `You rate crypto news for its effect on the mentioned asset over the next day.
For every numbered item return one object with:
  "i": the item number,
  "sentiment": -1 (very bearish) to 1 (very bullish),
  "confidence": 0 to 1,
  "impact": integer 0 (noise) to 10 (market moving, e.g. ETF decisions, major hacks, exchange collapses).
Reply with a bare JSON array only.`

type ratedHeadline struct {
	I          int     `json:"i"`
	Sentiment  float64 `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Impact     float64 `json:"impact"`
}

func (s *OpenAIScorer) ScoreBatch(ctx context.Context, items []Headline) (map[int]HeadlineScore, error) {
	if s == nil || s.client == nil || len(items) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, h := range items {
		fmt.Fprintf(&sb, "[%d] %s", i, strings.TrimSpace(h.Title))
		if ex := strings.TrimSpace(h.Excerpt); ex != "" {
			fmt.Fprintf(&sb, " | %s", ex)
		}
		sb.WriteByte('\n')
	}

	completion, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(headlinePrompt),
			openai.UserMessage(sb.String()),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("rate headlines: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("rate headlines: empty completion")
	}

	body, err := jsonArray(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	var rows []ratedHeadline
	if err := json.Unmarshal([]byte(body), &rows); err != nil {
		return nil, fmt.Errorf("decode headline ratings: %w", err)
	}

	out := make(map[int]HeadlineScore, len(rows))
	for _, row := range rows {
		if row.I < 0 || row.I >= len(items) {
			continue
		}
		out[row.I] = HeadlineScore{
			Sentiment:   clamp(row.Sentiment, -1, 1),
			Confidence:  clamp(row.Confidence, 0, 1),
			Impact:      int(math.Round(clamp(row.Impact, 0, 10))),
			ImpactRated: true,
			Model:       "llm:" + s.model,
		}
	}
	return out, nil
}

// jsonArray cuts the outermost JSON array out of a model reply, which may
// be wrapped in prose or a code fence.
func jsonArray(reply string) (string, error) {
	start := strings.IndexByte(reply, '[')
	end := strings.LastIndexByte(reply, ']')
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON array in headline ratings")
	}
	return reply[start : end+1], nil
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
