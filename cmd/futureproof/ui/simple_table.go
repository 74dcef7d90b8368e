package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SimpleTable renders static rows under a header, e.g. the profile summary
// on the dashboard.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string

	// Empty is shown instead of the table when there are no rows.
	Empty string
}

// NewSimpleTable creates a new SimpleTable with the given title and headers.
func NewSimpleTable(title string, headers ...string) *SimpleTable {
	return &SimpleTable{Title: title, Headers: headers}
}

// AddRow adds a row. Missing cells render blank, extra cells are dropped.
func (t *SimpleTable) AddRow(cells ...string) *SimpleTable {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
	return t
}

// widths is the display width of each column, padding included.
func (t *SimpleTable) widths() []int {
	w := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		w[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if cw := lipgloss.Width(cell); cw > w[i] {
				w[i] = cw
			}
		}
	}
	for i := range w {
		w[i] += 2
	}
	return w
}

// View renders the table using the provided styles.
func (t *SimpleTable) View(styles Styles) string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		if t.Empty != "" {
			sb.WriteString(styles.Muted.Render(t.Empty))
			sb.WriteString("\n")
		}
		return sb.String()
	}

	widths := t.widths()
	sep := styles.Muted.Render("│")
	line := func(cells []string, style lipgloss.Style) {
		rendered := make([]string, len(cells))
		for i, c := range cells {
			rendered[i] = style.Width(widths[i]).Render(c)
		}
		sb.WriteString(strings.Join(rendered, sep))
		sb.WriteString("\n")
	}

	line(t.Headers, styles.Bold.Padding(0, 1))

	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		line(row, styles.Body.Padding(0, 1))
	}
	return sb.String()
}
