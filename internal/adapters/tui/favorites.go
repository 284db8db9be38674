package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/jsamuelsen/daily-inspiration/internal/domain"
)

const (
	idColumnWidth      = 15
	authorColumnWidth  = 24
	contentColumnWidth = 60

	// headerLines is the header row plus its bottom border.
	headerLines = 2
)

// FavoriteRows converts favorites to table rows: id, author, content.
func FavoriteRows(favorites []domain.Quote) []table.Row {
	rows := make([]table.Row, 0, len(favorites))
	for _, q := range favorites {
		rows = append(rows, table.Row{q.ID, truncate(q.Author, authorColumnWidth-2), truncate(q.Content, contentColumnWidth-2)})
	}

	return rows
}

// NewFavoritesTable builds a styled favorites table. height counts the header;
// height <= 0 sizes the table to fit every row.
func NewFavoritesTable(favorites []domain.Quote, height int, focused bool) table.Model {
	rows := FavoriteRows(favorites)
	if height <= 0 {
		height = len(rows) + headerLines
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: idColumnWidth},
			{Title: "Author", Width: authorColumnWidth},
			{Title: "Quote", Width: contentColumnWidth},
		}),
		table.WithRows(rows),
		table.WithFocused(focused),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}

	if limit <= 3 {
		return string(r[:limit])
	}

	return string(r[:limit-3]) + "..."
}
