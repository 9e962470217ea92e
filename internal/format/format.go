// Package format renders scan results for human consumption. The MCP
// transport always carries raw JSON; these tables exist for the direct CLI
// subcommands only.
package format

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"periphery-mcp/internal/periphery"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// ParseMode maps a --format flag value to a Mode; unknown values fall back
// to ASCII.
func ParseMode(s string) Mode {
	if s == "markdown" || s == "md" {
		return Markdown
	}
	return ASCII
}

// IssueTable renders the normalized issue list as one row per finding,
// line numbers right-aligned, long identifiers truncated.
func IssueTable(issues []periphery.Issue, m Mode) string {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	w.AppendHeader(table.Row{"kind", "identifier", "file", "line"})
	for _, i := range issues {
		w.AppendRow(table.Row{i.Kind, i.Identifier, i.File, i.Line})
	}
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60},
		{Number: 3, WidthMax: 80},
		{Number: 4, Align: text.AlignRight},
	})
	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}
