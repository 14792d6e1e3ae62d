// Package report renders chart payloads as a human-readable preview, one
// section per chart with its aggregated table.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gochart/domain/chart"
	"gochart/domain/frame"
)

// Options controls preview rendering
type Options struct {
	// MaxRows caps rows printed per table; zero prints all
	MaxRows int
	Title   string
}

// Markdown renders charts as a markdown document
func Markdown(charts []chart.Payload, opts Options) string {
	var sb strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", opts.Title)
	}
	if len(charts) == 0 {
		sb.WriteString("_No charts were produced._\n")
		return sb.String()
	}
	for _, p := range charts {
		writeChart(&sb, p, opts)
	}
	return sb.String()
}

// HTML renders the markdown preview to an HTML fragment
func HTML(charts []chart.Payload, opts Options) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(Markdown(charts, opts)), p, renderer)
}

func writeChart(sb *strings.Builder, p chart.Payload, opts Options) {
	h := p.Head()
	fmt.Fprintf(sb, "## %d. %s\n\n", h.ChartPosition, escape(h.ChartTitle))
	fmt.Fprintf(sb, "*%s*", strings.ReplaceAll(string(h.ChartType), "_", " "))
	if h.ChartID != "" {
		fmt.Fprintf(sb, " · `%s`", h.ChartID)
	}
	sb.WriteString("\n\n")

	switch v := p.(type) {
	case *chart.CardPayload:
		fmt.Fprintf(sb, "**%s:** %s", escape(v.Label), escape(v.Value))
		if v.Category != "" {
			fmt.Fprintf(sb, " (%s)", escape(v.Category))
		}
		sb.WriteString("\n\n")
		if v.Note != "" {
			fmt.Fprintf(sb, "> %s\n\n", escape(v.Note))
		}
	case *chart.TablePayload:
		writeTable(sb, v.Columns, v.Rows, opts.MaxRows)
		if v.Truncated {
			sb.WriteString("_Rows truncated._\n\n")
		}
		return
	case *chart.HistogramPayload:
		fmt.Fprintf(sb, "Mean %s, median %s over %d bins.\n\n", number(v.Mean), number(v.Median), len(v.Bins))
	}

	if t := h.AggregatedTable; t != nil {
		writeTable(sb, t.Columns, t.Rows, opts.MaxRows)
	}
	if h.ChartQuery != "" {
		fmt.Fprintf(sb, "```sql\n%s\n```\n\n", strings.TrimSpace(h.ChartQuery))
	}
}

func writeTable(sb *strings.Builder, columns []string, rows []map[string]any, maxRows int) {
	if len(columns) == 0 {
		return
	}
	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = escape(c)
	}
	fmt.Fprintf(sb, "| %s |\n", strings.Join(cells, " | "))
	fmt.Fprintf(sb, "|%s\n", strings.Repeat(" --- |", len(columns)))

	shown := rows
	if maxRows > 0 && len(rows) > maxRows {
		shown = rows[:maxRows]
	}
	for _, row := range shown {
		for i, c := range columns {
			cells[i] = escape(cell(row[c]))
		}
		fmt.Fprintf(sb, "| %s |\n", strings.Join(cells, " | "))
	}
	sb.WriteString("\n")
	if len(shown) < len(rows) {
		fmt.Fprintf(sb, "_%d more rows not shown._\n\n", len(rows)-len(shown))
	}
}

func cell(v any) string {
	if f, ok := v.(float64); ok {
		return number(f)
	}
	return frame.Label(v)
}

func number(f float64) string {
	return frame.Label(frame.Round6(f))
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
