package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)
	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, _ = fmt.Fprintln(w, t.Render())
}

// printFields writes aligned "label: value" lines under a title.
func printFields(w io.Writer, title string, fields [][2]string) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(title))
	width := 0
	for _, f := range fields {
		width = max(width, len(f[0]))
	}
	for _, f := range fields {
		label := fmt.Sprintf("%-*s", width+1, f[0]+":")
		_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(label), f[1])
	}
}
