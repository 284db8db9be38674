// Package tui renders the quote view in a terminal with bubbletea. The model
// only reads app.ViewState snapshots; fetches, saves and removals run as
// commands against the QuoteView.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jsamuelsen/daily-inspiration/internal/app"
	"github.com/jsamuelsen/daily-inspiration/internal/domain"
)

// QuoteView is the state the terminal view drives.
type QuoteView interface {
	FetchNewQuote(ctx context.Context, retries int) domain.Quote
	SaveQuote(ctx context.Context) error
	RemoveFromFavorites(ctx context.Context, id string) error
	Snapshot() app.ViewState
}

const (
	defaultWidth   = 80
	minTableHeight = 3
	chromeHeight   = 8
)

// Messages.
type (
	quoteFetchedMsg struct {
		quote domain.Quote
	}

	favoritesChangedMsg struct {
		action string
		err    error
	}
)

// Model is the bubbletea model for the quote view.
type Model struct {
	ctx     context.Context
	view    QuoteView
	retries int

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	table   table.Model

	state         app.ViewState
	fetching      bool
	showFavorites bool
	status        string
	err           error
	width         int
	height        int
}

// New creates a Model in the loading state; Init issues the first fetch.
// ctx bounds every command the model starts.
func New(ctx context.Context, view QuoteView, retries int) Model {
	if retries < 1 {
		retries = app.DefaultRetries
	}

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(SpinnerStyle),
	)

	m := Model{
		ctx:      ctx,
		view:     view,
		retries:  retries,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  s,
		fetching: true,
		width:    defaultWidth,
	}
	m.refresh()

	return m
}

// Init starts the spinner and the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

// Update handles input and command results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(m.tableHeight())

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case quoteFetchedMsg:
		m.fetching = false
		m.refresh()

		return m, nil

	case favoritesChangedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.action
		}

		m.refresh()

		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.New):
		if m.fetching {
			return m, nil
		}

		m.fetching = true
		m.status = ""
		m.err = nil
		m.refreshKeys()

		return m, tea.Batch(m.spinner.Tick, m.fetch())

	case key.Matches(msg, m.keys.Save):
		if !m.saveable() {
			return m, nil
		}

		return m, m.save()

	case key.Matches(msg, m.keys.Share):
		if m.state.Quote != nil {
			m.status = "Share: " + m.state.ShareURL
		}

		return m, nil

	case key.Matches(msg, m.keys.Favorites):
		m.showFavorites = !m.showFavorites
		m.refresh()

		return m, nil

	case key.Matches(msg, m.keys.Remove):
		if !m.showFavorites {
			return m, nil
		}

		row := m.table.SelectedRow()
		if len(row) == 0 {
			return m, nil
		}

		return m, m.remove(row[0])
	}

	if m.showFavorites {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	return m, nil
}

// refresh re-reads the view state and rebuilds the dependent widgets.
func (m *Model) refresh() {
	m.state = m.view.Snapshot()

	cursor := m.table.Cursor()
	m.table = NewFavoritesTable(m.state.Favorites, m.tableHeight(), m.showFavorites)

	if n := len(m.state.Favorites); n > 0 {
		m.table.SetCursor(min(cursor, n-1))
	}

	m.refreshKeys()
}

func (m *Model) saveable() bool {
	return !m.fetching && m.state.CanSave
}

func (m *Model) refreshKeys() {
	m.keys.Save.SetEnabled(m.saveable())
	m.keys.Share.SetEnabled(m.state.Quote != nil)
	m.keys.Remove.SetEnabled(m.showFavorites && len(m.state.Favorites) > 0)
}

func (m Model) tableHeight() int {
	if m.height == 0 {
		return 0
	}

	return max(m.height-chromeHeight, minTableHeight)
}

// Commands.

func (m Model) fetch() tea.Cmd {
	ctx, view, retries := m.ctx, m.view, m.retries

	return func() tea.Msg {
		return quoteFetchedMsg{quote: view.FetchNewQuote(ctx, retries)}
	}
}

func (m Model) save() tea.Cmd {
	ctx, view := m.ctx, m.view

	return func() tea.Msg {
		return favoritesChangedMsg{action: "Saved to favorites", err: view.SaveQuote(ctx)}
	}
}

func (m Model) remove(id string) tea.Cmd {
	ctx, view := m.ctx, m.view

	return func() tea.Msg {
		return favoritesChangedMsg{action: "Removed from favorites", err: view.RemoveFromFavorites(ctx, id)}
	}
}

// View renders the model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Daily Inspiration"))
	b.WriteString("\n")
	b.WriteString(m.quoteView())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %s", m.err)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(StatusStyle.Render(m.status))
		b.WriteString("\n")
	}

	if m.showFavorites {
		b.WriteString("\n")
		b.WriteString(m.favoritesView())
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m Model) quoteView() string {
	width := max(m.width-4, 20)

	if m.fetching || m.state.Loading {
		return CardStyle.Width(width).Render(m.spinner.View() + " Loading...")
	}

	if m.state.Quote == nil {
		return CardStyle.Width(width).Render(MutedStyle.Render("No quote yet"))
	}

	inner := width - CardStyle.GetHorizontalFrameSize()
	body := lipgloss.JoinVertical(
		lipgloss.Left,
		ContentStyle.Width(inner).Render(`"`+m.state.Quote.Content+`"`),
		AuthorStyle.Width(inner).Render("- "+m.state.Quote.Author),
	)

	return CardStyle.Width(width).Render(body)
}

func (m Model) favoritesView() string {
	header := MutedStyle.Render(fmt.Sprintf("Favorites (%d)", len(m.state.Favorites)))
	if len(m.state.Favorites) == 0 {
		return header + "\n" + MutedStyle.Render("No favorites yet")
	}

	return header + "\n" + m.table.View()
}

// Err returns the last save or remove failure.
func (m Model) Err() error {
	return m.err
}

// Run starts the terminal view and blocks until the user quits.
func Run(ctx context.Context, view QuoteView, retries int, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)

	if _, err := tea.NewProgram(New(ctx, view, retries), opts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running quote view: %w", err)
	}

	return nil
}
