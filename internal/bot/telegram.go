package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"crypto-oracle/internal/dashboard"
	"crypto-oracle/internal/domain"
	"crypto-oracle/internal/forecast"
	"crypto-oracle/internal/sentiment"

	tele "gopkg.in/telebot.v3"
)

const (
	commandTimeout = 20 * time.Second
	maxListedCoins = 15
)

type Market interface {
	ListCoins(ctx context.Context) ([]domain.Coin, error)
	GetCoin(ctx context.Context, coinID string) (domain.Coin, error)
}

type Forecaster interface {
	Generate(ctx context.Context, coin domain.Coin) (*domain.Forecast, error)
}

type News interface {
	GetNews(ctx context.Context, coinID string) ([]domain.NewsItem, error)
}

type Services struct {
	Market    Market
	Forecasts Forecaster
	News      News
	Preferred []string
	Note      func(coinID string) string
}

func StartTelegramBot(svc Services) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/coins", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return c.Send(coinsReply(ctx, svc))
	})

	b.Handle("/forecast", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return c.Send(forecastReply(ctx, svc, c.Args()))
	})

	b.Handle("/news", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return c.Send(newsReply(ctx, svc, c.Args()))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func coinsReply(ctx context.Context, svc Services) string {
	coins, err := svc.Market.ListCoins(ctx)
	if err != nil {
		log.Printf("telegram /coins: %v", err)
		return dashboard.UserMessage(dashboard.OpListing, err)
	}
	if len(coins) == 0 {
		return "No coins available."
	}

	var b strings.Builder
	b.WriteString("Top coins\n")
	for i, c := range coins {
		if i == maxListedCoins {
			fmt.Fprintf(&b, "... and %d more\n", len(coins)-maxListedCoins)
			break
		}
		fmt.Fprintf(&b, "%s (%s) %s %s\n", c.Name, strings.ToUpper(c.Symbol),
			forecast.DisplayPrice(c.CurrentPrice), forecast.FormatPercent(c.PriceChange24h))
	}
	if def, ok := dashboard.SelectDefault(coins, svc.Preferred...); ok {
		fmt.Fprintf(&b, "\nTry /forecast %s", def.ID)
	}
	return b.String()
}

func forecastReply(ctx context.Context, svc Services, args []string) string {
	coin, msg, ok := resolveCoin(ctx, svc, args, "/forecast")
	if !ok {
		return msg
	}

	f, err := svc.Forecasts.Generate(ctx, coin)
	if err != nil {
		log.Printf("telegram /forecast %s: %v", coin.ID, err)
		return dashboard.UserMessage(dashboard.OpSelect, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s forecast\nCurrent: %s\n", coin.Name, forecast.DisplayPrice(coin.CurrentPrice))
	for _, s := range forecast.Summarize(f) {
		fmt.Fprintf(&b, "%s: %s (%s) by %s\n", s.Label, forecast.DisplayPrice(s.EndPrice),
			forecast.FormatPercent(s.ChangePct), s.EndDate)
	}
	fmt.Fprintf(&b, "Sentiment score: %.2f", f.SentimentScore)
	if svc.Note != nil {
		if note := svc.Note(coin.ID); note != "" {
			fmt.Fprintf(&b, "\n\n%s", note)
		}
	}
	return b.String()
}

func newsReply(ctx context.Context, svc Services, args []string) string {
	coin, msg, ok := resolveCoin(ctx, svc, args, "/news")
	if !ok {
		return msg
	}

	items, err := svc.News.GetNews(ctx, coin.ID)
	if err != nil {
		log.Printf("telegram /news %s: %v", coin.ID, err)
		return dashboard.UserMessage(dashboard.OpNews, err)
	}
	if len(items) == 0 {
		return fmt.Sprintf("No recent news for %s.", coin.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s news\n", coin.Name)
	for _, item := range items {
		fmt.Fprintf(&b, "[%s] %s (%s, %s)\n", item.Sentiment.Title(), item.Title, item.Source,
			item.PublishedAt.Format(domain.DateLayout))
	}
	fmt.Fprintf(&b, "Sentiment score: %.2f", sentiment.Score(items))
	return b.String()
}

func resolveCoin(ctx context.Context, svc Services, args []string, command string) (domain.Coin, string, bool) {
	if len(args) == 0 {
		return domain.Coin{}, fmt.Sprintf("Usage: %s bitcoin", command), false
	}
	id := strings.ToLower(strings.TrimSpace(args[0]))
	coin, err := svc.Market.GetCoin(ctx, id)
	switch {
	case err == nil:
		return coin, "", true
	case errors.Is(err, domain.ErrUnknownCoin):
		return domain.Coin{}, fmt.Sprintf("Unknown coin: %s\nUse /coins to see the list.", id), false
	default:
		log.Printf("telegram %s %s: %v", command, id, err)
		return domain.Coin{}, dashboard.UserMessage(dashboard.OpListing, err), false
	}
}
