package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/ppiankov/claimlens/internal/model"
)

// Renderer writes reports as JSON, Markdown and a terminal summary.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer printing summaries to out. Color is
// controlled globally through color.NoColor.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// RenderJSON writes the report as indented JSON. A path of "-" writes to
// the renderer's output.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	return r.write(path, data)
}

// RenderMarkdown writes a human-readable Markdown report.
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return r.write(path, []byte(Markdown(report)))
}

func (r *Renderer) write(path string, data []byte) error {
	if path == "-" {
		_, err := r.out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown renders the report body.
func Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Claim extraction: %s\n\n", report.Source)
	fmt.Fprintf(&b, "- Document: `%s`\n", report.DocumentID)
	fmt.Fprintf(&b, "- Extracted: %s\n", report.ExtractedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Valid: **%t** (score %.2f)\n\n", report.Validation.Valid, report.Validation.Score)

	b.WriteString("## Fields\n\n")
	writeRecordTable(&b, report.Record)

	if len(report.Validation.Issues) > 0 {
		b.WriteString("\n## Issues\n\n")
		for _, issue := range report.Validation.Issues {
			fmt.Fprintf(&b, "- `%s`\n", issue)
		}
	}

	if report.Summary != "" {
		fmt.Fprintf(&b, "\n## Summary\n\n%s\n", report.Summary)
	}

	if m := report.Model; m != nil && m.Enabled {
		fmt.Fprintf(&b, "\n## Model extraction (%s/%s)\n\n", m.Provider, m.Model)
		if m.Record != nil {
			writeRecordTable(&b, *m.Record)
		}
		if m.Validation != nil {
			fmt.Fprintf(&b, "\nValid: **%t** (score %.2f)\n", m.Validation.Valid, m.Validation.Score)
		}
		if m.Summary != "" {
			fmt.Fprintf(&b, "\n%s\n", m.Summary)
		}
		for _, w := range m.Warnings {
			fmt.Fprintf(&b, "\n> ⚠ %s\n", w)
		}
	}

	return b.String()
}

func writeRecordTable(b *strings.Builder, rec model.ClaimRecord) {
	b.WriteString("| Field | Value |\n|-------|-------|\n")
	for _, f := range model.CoreFields {
		v, ok := rec.Get(f)
		if !ok {
			v = "_absent_"
		}
		fmt.Fprintf(b, "| %s | %s |\n", f, escapeCell(v))
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 200 {
		s = string(r[:200]) + "…"
	}
	return s
}

// RenderSummary prints a short colored summary of the report.
func (r *Renderer) RenderSummary(report *model.Report) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	fmt.Fprintln(r.out)
	_, _ = bold.Fprintf(r.out, "═══ %s ═══\n", report.Source)

	for _, f := range model.CoreFields {
		v, ok := report.Record.Get(f)
		if ok {
			fmt.Fprintf(r.out, "  %-18s %s\n", f, escapeCell(v))
		} else {
			fmt.Fprintf(r.out, "  %-18s ", f)
			_, _ = faint.Fprintln(r.out, "—")
		}
	}

	fmt.Fprintln(r.out)
	if report.Validation.Valid {
		_, _ = green.Fprintf(r.out, "✓ valid (score %.2f)\n", report.Validation.Score)
	} else {
		_, _ = red.Fprintf(r.out, "✗ invalid (score %.2f)\n", report.Validation.Score)
	}
	for _, issue := range report.Validation.Issues {
		_, _ = yellow.Fprintf(r.out, "  • %s\n", issue)
	}

	if report.Model != nil && report.Model.Validation != nil {
		fmt.Fprintf(r.out, "  model %s: valid=%t score=%.2f\n",
			report.Model.Provider, report.Model.Validation.Valid, report.Model.Validation.Score)
	}
	if report.Cached {
		_, _ = faint.Fprintln(r.out, "  (cached)")
	}
}
