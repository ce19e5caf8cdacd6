package db

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5C5C5C"))
)

// SimpleTable renders rows as an ASCII grid with a styled header
type SimpleTable struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

func NewTable(w io.Writer) *SimpleTable {
	return &SimpleTable{
		writer: w,
		rows:   make([][]string, 0),
	}
}

func (t *SimpleTable) Header(headers []string) {
	t.headers = headers
}

func (t *SimpleTable) Bulk(rows [][]string) {
	t.rows = append(t.rows, rows...)
}

// Render outputs the formatted table
func (t *SimpleTable) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	widths := t.calculateWidths()
	separator := borderStyle.Render(t.buildSeparator(widths))

	fmt.Fprintln(t.writer, separator)

	if len(t.headers) > 0 {
		fmt.Fprintln(t.writer, t.formatRow(t.headers, widths, headerStyle))
		fmt.Fprintln(t.writer, separator)
	}

	plain := lipgloss.NewStyle()
	for _, row := range t.rows {
		fmt.Fprintln(t.writer, t.formatRow(row, widths, plain))
	}

	fmt.Fprintln(t.writer, separator)
}

// calculateWidths uses display width so multi-byte cells line up.
func (t *SimpleTable) calculateWidths() []int {
	numCols := len(t.headers)
	for _, row := range t.rows {
		numCols = max(numCols, len(row))
	}

	widths := make([]int, numCols)
	for i, h := range t.headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	for i := range widths {
		widths[i] = max(widths[i], 1)
	}
	return widths
}

func (t *SimpleTable) buildSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

func (t *SimpleTable) formatRow(row []string, widths []int, style lipgloss.Style) string {
	bar := borderStyle.Render("|")
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		parts[i] = " " + style.Render(cell) + strings.Repeat(" ", w-lipgloss.Width(cell)+1)
	}
	return bar + strings.Join(parts, bar) + bar
}
