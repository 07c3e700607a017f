package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"crypto-oracle/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestRedditFetchNews(t *testing.T) {
	p := NewRedditNewsProvider(trace.NewNoopTracerProvider().Tracer("test"), "", stubLabeler{})
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/r/CryptoCurrency/search.json" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("q") != "pi network" || req.URL.Query().Get("restrict_sr") != "1" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		if req.Header.Get("User-Agent") == "" {
			t.Fatalf("expected user-agent header")
		}
		body := `{"data":{"children":[
			{"data":{"id":"abc123","title":"PI Network\nmainnet news","created_utc":1771009800,"permalink":"/r/CryptoCurrency/comments/abc123/post","url":"https://example.com/fallback"}},
			{"data":{"id":"","title":"missing id"}}
		]}}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     make(http.Header),
		}, nil
	})}

	items, err := p.FetchNews(context.Background(), "pi-network")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Title != "PI Network mainnet news" || item.Source != "r/CryptoCurrency" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.URL != "https://example.com/r/CryptoCurrency/comments/abc123/post" {
		t.Fatalf("unexpected permalink url: %s", item.URL)
	}
	if item.Sentiment != domain.SentimentPositive {
		t.Fatalf("expected labeled item, got %s", item.Sentiment)
	}
}

func TestRedditFetchNewsHTTPError(t *testing.T) {
	p := NewRedditNewsProvider(trace.NewNoopTracerProvider().Tracer("test"), "Bitcoin", nil)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(bytes.NewBufferString("blocked")),
			Header:     make(http.Header),
		}, nil
	})}
	if _, err := p.FetchNews(context.Background(), "bitcoin"); err == nil {
		t.Fatal("expected error")
	}
}
