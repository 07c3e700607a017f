package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"crypto-oracle/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	bullishTokens = []string{"bull", "breakout", "surge", "rally", "adoption", "growth", "gain", "launch", "partnership", "record", "recover", "promising", "upgrade"}
	bearishTokens = []string{"bear", "dump", "sell-off", "crash", "hack", "lawsuit", "ban", "decline", "plunge", "liquidation", "fraud", "exploit", "delist"}
)

// HeuristicLabel labels a headline from keyword counts.
func HeuristicLabel(title string) domain.Sentiment {
	text := strings.ToLower(strings.TrimSpace(title))
	if text == "" {
		return domain.SentimentNeutral
	}
	bull := countMatches(text, bullishTokens)
	bear := countMatches(text, bearishTokens)
	switch {
	case bull > bear:
		return domain.SentimentPositive
	case bear > bull:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func countMatches(text string, tokens []string) int {
	count := 0
	for _, token := range tokens {
		if strings.Contains(text, token) {
			count++
		}
	}
	return count
}

// NormalizeLabel maps free-form labels onto the three sentiments.
func NormalizeLabel(label string) domain.Sentiment {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "bull", "bullish", "positive":
		return domain.SentimentPositive
	case "bear", "bearish", "negative":
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

type BatchLLMLabeler interface {
	LabelBatch(ctx context.Context, titles []string) ([]domain.Sentiment, error)
}

// Labeler assigns a sentiment to every headline. The heuristic result stands
// whenever the LLM batch fails or returns a short answer.
type Labeler struct {
	llm       BatchLLMLabeler
	batchSize int
}

func NewLabeler(llm BatchLLMLabeler, batchSize int) *Labeler {
	if batchSize <= 0 {
		batchSize = 24
	}
	return &Labeler{llm: llm, batchSize: batchSize}
}

func (l *Labeler) Label(ctx context.Context, items []domain.NewsItem) []domain.NewsItem {
	out := make([]domain.NewsItem, len(items))
	for i, item := range items {
		item.Sentiment = HeuristicLabel(item.Title)
		out[i] = item
	}
	if l == nil || l.llm == nil {
		return out
	}

	for start := 0; start < len(out); start += l.batchSize {
		end := min(start+l.batchSize, len(out))
		titles := make([]string, 0, end-start)
		for _, item := range out[start:end] {
			titles = append(titles, item.Title)
		}
		labels, err := l.llm.LabelBatch(ctx, titles)
		if err != nil {
			log.Printf("sentiment llm batch error: %v", err)
			continue
		}
		if len(labels) != len(titles) {
			log.Printf("sentiment llm batch returned %d labels for %d titles", len(labels), len(titles))
			continue
		}
		for i, label := range labels {
			if label.Valid() {
				out[start+i].Sentiment = label
			}
		}
	}
	return out
}

type openAIChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type OpenAILabeler struct {
	client openAIChatClient
	model  string
}

// NewOpenAILabeler returns nil when apiKey is empty.
func NewOpenAILabeler(apiKey, model string) *OpenAILabeler {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAILabeler{
		client: &openAIClient{client: client},
		model:  model,
	}
}

func (l *OpenAILabeler) LabelBatch(ctx context.Context, titles []string) ([]domain.Sentiment, error) {
	if l == nil || l.client == nil || len(titles) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, title := range titles {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i, strings.TrimSpace(title)))
	}

	systemPrompt := "You label crypto news headlines. Return ONLY a JSON array of strings, one per headline in the given order, each positive|neutral|negative. No markdown."

	completion, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: l.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Headlines:\n" + sb.String()),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty labeler completion")
	}

	raw := trimCodeFence(completion.Choices[0].Message.Content)
	var parsed []string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse labeler json: %w", err)
	}

	out := make([]domain.Sentiment, 0, len(parsed))
	for _, label := range parsed {
		out = append(out, NormalizeLabel(label))
	}
	return out, nil
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
