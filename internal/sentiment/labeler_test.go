package sentiment

import (
	"context"
	"errors"
	"testing"

	"crypto-oracle/internal/domain"

	"github.com/openai/openai-go"
)

func TestHeuristicLabel(t *testing.T) {
	tests := map[string]domain.Sentiment{
		"Bitcoin rally extends as adoption grows": domain.SentimentPositive,
		"Exchange hack triggers crash":            domain.SentimentNegative,
		"Market analysts predict stability":       domain.SentimentNeutral,
		"":                                        domain.SentimentNeutral,
	}
	for title, want := range tests {
		if got := HeuristicLabel(title); got != want {
			t.Errorf("%q: expected %s, got %s", title, want, got)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	if NormalizeLabel(" Bullish ") != domain.SentimentPositive {
		t.Fatal("expected bullish to map to positive")
	}
	if NormalizeLabel("bear") != domain.SentimentNegative {
		t.Fatal("expected bear to map to negative")
	}
	if NormalizeLabel("unclear") != domain.SentimentNeutral {
		t.Fatal("expected fallback to neutral")
	}
}

func TestLabelerHeuristicOnly(t *testing.T) {
	l := NewLabeler(nil, 0)
	out := l.Label(context.Background(), []domain.NewsItem{{Title: "ETH surge"}})
	if out[0].Sentiment != domain.SentimentPositive {
		t.Fatalf("expected positive, got %s", out[0].Sentiment)
	}
}

func TestLabelerUsesLLM(t *testing.T) {
	l := NewLabeler(stubBatchLabeler{labels: []domain.Sentiment{domain.SentimentNegative}}, 10)
	out := l.Label(context.Background(), []domain.NewsItem{{Title: "ETH surge"}})
	if out[0].Sentiment != domain.SentimentNegative {
		t.Fatalf("expected llm label, got %s", out[0].Sentiment)
	}
}

func TestLabelerFallsBackOnLLMError(t *testing.T) {
	l := NewLabeler(stubBatchLabeler{err: errors.New("boom")}, 10)
	out := l.Label(context.Background(), []domain.NewsItem{{Title: "exchange hack"}})
	if out[0].Sentiment != domain.SentimentNegative {
		t.Fatalf("expected heuristic label, got %s", out[0].Sentiment)
	}
}

func TestLabelerIgnoresShortLLMAnswer(t *testing.T) {
	l := NewLabeler(stubBatchLabeler{labels: []domain.Sentiment{domain.SentimentNegative}}, 10)
	out := l.Label(context.Background(), []domain.NewsItem{{Title: "rally"}, {Title: "quiet day"}})
	if out[0].Sentiment != domain.SentimentPositive || out[1].Sentiment != domain.SentimentNeutral {
		t.Fatalf("expected heuristic labels, got %+v", out)
	}
}

func TestOpenAILabelerParsesFencedJSON(t *testing.T) {
	l := &OpenAILabeler{
		client: stubChatClient{response: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "```json\n[\"bullish\", \"neutral\", \"negative\"]\n```"}},
			},
		}},
		model: "gpt-4o-mini",
	}
	labels, err := l.LabelBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Sentiment{domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("label %d: expected %s, got %s", i, want[i], labels[i])
		}
	}
}

func TestOpenAILabelerEmptyChoices(t *testing.T) {
	l := &OpenAILabeler{client: stubChatClient{response: &openai.ChatCompletion{}}, model: "m"}
	if _, err := l.LabelBatch(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error for empty completion")
	}
}

func TestNewOpenAILabelerWithoutKey(t *testing.T) {
	if NewOpenAILabeler("  ", "") != nil {
		t.Fatal("expected nil labeler without api key")
	}
}

type stubBatchLabeler struct {
	labels []domain.Sentiment
	err    error
}

func (s stubBatchLabeler) LabelBatch(ctx context.Context, titles []string) ([]domain.Sentiment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Sentiment(nil), s.labels...), nil
}

type stubChatClient struct {
	response *openai.ChatCompletion
	err      error
}

func (s stubChatClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return s.response, s.err
}
