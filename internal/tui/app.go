// Package tui renders the dashboard in a terminal. The model drives a
// dashboard.Session and redraws on every snapshot the session publishes.
package tui

import (
	"context"
	"fmt"
	"strings"

	"crypto-oracle/internal/dashboard"
	"crypto-oracle/internal/domain"
	"crypto-oracle/internal/forecast"
	"crypto-oracle/internal/overrides"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.opentelemetry.io/otel/trace"
)

const listWidth = 34

var horizonTabs = []string{"7 Days", "4 Weeks", "12 Months"}

type Services struct {
	Market    dashboard.CoinLister
	Forecasts dashboard.Forecaster
	News      dashboard.NewsReader
	Preferred []string
	Table     *overrides.Table
	Username  string
}

type snapshotMsg dashboard.Snapshot

type sessionClosedMsg struct{}

type AppModel struct {
	session     *dashboard.Session
	updates     <-chan dashboard.Snapshot
	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc

	snap     dashboard.Snapshot
	cursor   int
	offset   int
	horizon  int
	spinner  spinner.Model
	width    int
	height   int
	username string
}

func NewAppModel(tracer trace.Tracer, svc Services) *AppModel {
	session := dashboard.NewSession(tracer, svc.Market, svc.Forecasts, svc.News, dashboard.Options{
		Preferred: svc.Preferred,
		Table:     svc.Table,
	})
	updates, unsubscribe := session.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())

	return &AppModel{
		session:     session,
		updates:     updates,
		unsubscribe: unsubscribe,
		ctx:         ctx,
		cancel:      cancel,
		snap:        session.Snapshot(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:       100,
		height:      30,
		username:    svc.Username,
	}
}

func (m *AppModel) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
}

// Close stops the session and releases its subscription.
func (m *AppModel) Close() {
	m.cancel()
	m.unsubscribe()
	m.session.Close()
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen(), m.run(m.session.LoadListing))
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		prev := m.snap.Selected
		m.snap = dashboard.Snapshot(msg)
		m.syncCursor(prev)
		return m, m.listen()

	case sessionClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.Close()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.scroll()
	case "down", "j":
		if m.cursor < len(m.snap.Coins)-1 {
			m.cursor++
		}
		m.scroll()
	case "enter", " ":
		if m.cursor < len(m.snap.Coins) {
			id := m.snap.Coins[m.cursor].ID
			return m, m.run(func(ctx context.Context) error { return m.session.Select(ctx, id) })
		}
	case "r":
		return m, m.run(m.session.Refresh)
	case "tab", "right", "l":
		m.horizon = (m.horizon + 1) % len(domain.Horizons)
	case "shift+tab", "left", "h":
		m.horizon = (m.horizon + len(domain.Horizons) - 1) % len(domain.Horizons)
	}
	return m, nil
}

// listen waits for the next session snapshot.
func (m *AppModel) listen() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return sessionClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// run executes a session operation off the update loop. Results arrive
// through listen.
func (m *AppModel) run(op func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		_ = op(ctx)
		return nil
	}
}

// syncCursor moves the cursor onto a newly selected coin.
func (m *AppModel) syncCursor(prev *domain.Coin) {
	if sel := m.snap.Selected; sel != nil && (prev == nil || prev.ID != sel.ID) {
		for i, c := range m.snap.Coins {
			if c.ID == sel.ID {
				m.cursor = i
				break
			}
		}
	}
	if m.cursor >= len(m.snap.Coins) {
		m.cursor = max(len(m.snap.Coins)-1, 0)
	}
	m.scroll()
}

func (m *AppModel) visibleRows() int {
	return max(m.height-8, 5)
}

func (m *AppModel) scroll() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *AppModel) View() string {
	header := titleStyle.Render("CryptoOracle") + " " + subtitleStyle.Render("AI-Powered Price Predictions")
	if m.username != "" {
		header += mutedStyle.Render("  " + m.username)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(listWidth).Render(m.viewList()),
		panelStyle.Width(max(m.width-listWidth-6, 40)).Render(m.viewDetail()),
	)
	help := mutedStyle.Render("↑/↓ move • enter select • ←/→ horizon • r refresh • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, help)
}

func (m *AppModel) viewList() string {
	if m.snap.Phase == dashboard.PhaseIdle || m.snap.Phase == dashboard.PhaseLoadingListing {
		return m.spinner.View() + " Loading coins..."
	}
	if len(m.snap.Coins) == 0 {
		if m.snap.Error != "" {
			return errorStyle.Render(m.snap.Error)
		}
		return mutedStyle.Render("No coins available.")
	}

	var b strings.Builder
	end := min(m.offset+m.visibleRows(), len(m.snap.Coins))
	for i := m.offset; i < end; i++ {
		c := m.snap.Coins[i]
		marker := "  "
		style := rowStyle
		if i == m.cursor {
			marker = "> "
			style = selectedRowStyle
		}
		line := fmt.Sprintf("%s%-8s %14s", marker, truncate(strings.ToUpper(c.Symbol), 8), forecast.DisplayPrice(c.CurrentPrice))
		b.WriteString(style.Render(line))
		b.WriteString(" ")
		b.WriteString(changeStyle(c.PriceChange24h).Render(forecast.FormatPercent(c.PriceChange24h)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *AppModel) viewDetail() string {
	coin := m.snap.Selected
	if coin == nil {
		if m.snap.Error != "" {
			return errorStyle.Render(m.snap.Error)
		}
		return mutedStyle.Render("Select a coin to see its forecast.")
	}

	var sections []string
	sections = append(sections, fmt.Sprintf("%s (%s)  %s  %s",
		coin.Name, strings.ToUpper(coin.Symbol), forecast.DisplayPrice(coin.CurrentPrice),
		changeStyle(coin.PriceChange24h).Render(forecast.FormatPercent(coin.PriceChange24h))))

	switch {
	case m.snap.Phase == dashboard.PhaseGeneratingForecast && m.snap.Forecast == nil:
		sections = append(sections, m.spinner.View()+" Generating predictions...")
	case m.snap.Error != "":
		sections = append(sections, errorStyle.Render(m.snap.Error))
	}
	if m.snap.Forecast != nil {
		sections = append(sections, m.viewForecast(m.snap.Forecast))
	}
	if m.snap.Note != "" {
		sections = append(sections, noteStyle.Render(m.snap.Note))
	}
	sections = append(sections, m.viewNews())
	return strings.Join(sections, "\n\n")
}

func (m *AppModel) viewForecast(f *domain.Forecast) string {
	tabs := make([]string, len(horizonTabs))
	for i, label := range horizonTabs {
		if i == m.horizon {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = inactiveTabStyle.Render(label)
		}
	}

	series := f.Predictions.Series(domain.Horizons[m.horizon])
	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(series.Label))
	for _, p := range series.Points {
		fmt.Fprintf(&b, "\n%s  %14s", p.Date.Format(domain.DateLayout), forecast.DisplayPrice(p.Price))
	}

	for _, s := range m.snap.Summaries {
		if s.Horizon == series.Horizon {
			fmt.Fprintf(&b, "\n%s %s", mutedStyle.Render("Change:"), changeStyle(s.ChangePct).Render(forecast.FormatPercent(s.ChangePct)))
		}
	}
	fmt.Fprintf(&b, "\n%s %.2f", mutedStyle.Render("Sentiment score:"), f.SentimentScore)
	return b.String()
}

func (m *AppModel) viewNews() string {
	var b strings.Builder
	b.WriteString(selectedRowStyle.Render("Latest News"))
	switch {
	case m.snap.NewsLoading:
		b.WriteString("\n" + m.spinner.View() + " Loading news...")
	case m.snap.NewsError != "":
		b.WriteString("\n" + errorStyle.Render(m.snap.NewsError))
	case len(m.snap.News) == 0:
		b.WriteString("\n" + mutedStyle.Render("No news available."))
	}
	for _, item := range m.snap.News {
		badge := badgeStyles[string(item.Sentiment)].Render(fmt.Sprintf("[%s]", item.Sentiment.Title()))
		fmt.Fprintf(&b, "\n%s %s", badge, item.Title)
		fmt.Fprintf(&b, "\n   %s", mutedStyle.Render(item.Source+" · "+item.PublishedAt.Format("Jan 2, 2006")))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
