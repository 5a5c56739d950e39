package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"

	"ecothread/domain/core"
)

// SectionKind identifies how a section renders
type SectionKind string

const (
	KindKeyValues SectionKind = "key_values"
	KindTable     SectionKind = "table"
	KindText      SectionKind = "text"
)

// Table is a simple header+rows table section payload
type Table struct {
	Header []string
	Rows   [][]string
}

// Section is one captured block of report output
type Section struct {
	Kind  SectionKind
	Title string
	Pairs [][2]string
	Table *Table
	Body  string
}

// Builder collects structured result sections for one run and serializes
// them on Close. It replaces an ambient stdout redirect with a scoped
// capture: stages append typed sections, and whatever was captured is
// flushed even when a run terminates early.
type Builder struct {
	title    string
	runID    core.RunID
	sections []Section
	warnings []string
	outDir   string
	flushed  bool
}

// NewBuilder creates a report builder for one run
func NewBuilder(title string, runID core.RunID, outDir string) *Builder {
	return &Builder{title: title, runID: runID, outDir: outDir}
}

// KeyValues appends a key-value section
func (b *Builder) KeyValues(title string, pairs ...[2]string) {
	b.sections = append(b.sections, Section{Kind: KindKeyValues, Title: title, Pairs: pairs})
}

// AddTable appends a tabular section
func (b *Builder) AddTable(title string, header []string, rows [][]string) {
	b.sections = append(b.sections, Section{
		Kind:  KindTable,
		Title: title,
		Table: &Table{Header: header, Rows: rows},
	})
}

// AddText appends a free-text section
func (b *Builder) AddText(title, body string) {
	b.sections = append(b.sections, Section{Kind: KindText, Title: title, Body: body})
}

// Warn records a statistical caveat. Warnings annotate the report; they
// never abort it.
func (b *Builder) Warn(format string, args ...interface{}) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns the caveats recorded so far
func (b *Builder) Warnings() []string {
	return append([]string(nil), b.warnings...)
}

// Text renders the captured sections as a plain-text report
func (b *Builder) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n", b.title, strings.Repeat("=", len(b.title)))
	fmt.Fprintf(&sb, "run: %s\n\n", b.runID)

	for _, s := range b.sections {
		fmt.Fprintf(&sb, "%s\n%s\n", s.Title, strings.Repeat("-", len(s.Title)))
		switch s.Kind {
		case KindKeyValues:
			for _, kv := range s.Pairs {
				fmt.Fprintf(&sb, "  %-28s %s\n", kv[0]+":", kv[1])
			}
		case KindTable:
			writeTextTable(&sb, s.Table)
		case KindText:
			sb.WriteString(s.Body)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(b.warnings) > 0 {
		sb.WriteString("Caveats\n-------\n")
		for _, w := range b.warnings {
			fmt.Fprintf(&sb, "  * %s\n", w)
		}
	}
	return sb.String()
}

// Markdown renders the captured sections as a Markdown document
func (b *Builder) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", b.title)
	fmt.Fprintf(&sb, "Run `%s`\n\n", b.runID)

	for _, s := range b.sections {
		fmt.Fprintf(&sb, "## %s\n\n", s.Title)
		switch s.Kind {
		case KindKeyValues:
			for _, kv := range s.Pairs {
				fmt.Fprintf(&sb, "- **%s**: %s\n", kv[0], kv[1])
			}
			sb.WriteString("\n")
		case KindTable:
			writeMarkdownTable(&sb, s.Table)
		case KindText:
			sb.WriteString(s.Body)
			sb.WriteString("\n\n")
		}
	}

	if len(b.warnings) > 0 {
		sb.WriteString("## Caveats\n\n")
		for _, w := range b.warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// HTML renders the Markdown report to standalone HTML
func (b *Builder) HTML() []byte {
	return markdown.ToHTML([]byte(b.Markdown()), nil, nil)
}

// Close flushes the report artifacts (report.txt, report.md, report.html)
// to the output directory. It is idempotent, so deferring it guarantees a
// flush even when a later stage fails.
func (b *Builder) Close() error {
	if b.flushed {
		return nil
	}
	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	artifacts := map[string][]byte{
		"report.txt":  []byte(b.Text()),
		"report.md":   []byte(b.Markdown()),
		"report.html": b.HTML(),
	}
	for name, data := range artifacts {
		path := filepath.Join(b.outDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	b.flushed = true
	return nil
}

func writeTextTable(sb *strings.Builder, t *Table) {
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		sb.WriteString("  ")
		for i, cell := range cells {
			w := len(cell)
			if i < len(widths) {
				w = widths[i]
			}
			fmt.Fprintf(sb, "%-*s  ", w, cell)
		}
		sb.WriteString("\n")
	}
	writeRow(t.Header)
	for _, row := range t.Rows {
		writeRow(row)
	}
}

func writeMarkdownTable(sb *strings.Builder, t *Table) {
	fmt.Fprintf(sb, "| %s |\n", strings.Join(t.Header, " | "))
	seps := make([]string, len(t.Header))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(sb, "| %s |\n", strings.Join(seps, " | "))
	for _, row := range t.Rows {
		fmt.Fprintf(sb, "| %s |\n", strings.Join(row, " | "))
	}
	sb.WriteString("\n")
}
