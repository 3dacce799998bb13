package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/skuahq/skua/internal/validation"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// outputFlag is a pflag.Value restricted to a fixed set of formats.
type outputFlag struct {
	value   string
	allowed []string
}

func (f *outputFlag) String() string { return f.value }
func (f *outputFlag) Type() string   { return "format" }

func (f *outputFlag) Set(v string) error {
	if !slices.Contains(f.allowed, v) {
		return fmt.Errorf("must be one of %s", strings.Join(f.allowed, ", "))
	}
	f.value = v
	return nil
}

// addOutputFlag registers -o/--output with the given default and choices.
func addOutputFlag(fs *pflag.FlagSet, def string, allowed ...string) *outputFlag {
	f := &outputFlag{value: def, allowed: allowed}
	fs.VarP(f, "output", "o", "output format: "+strings.Join(allowed, ", "))
	return f
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// printer renders human output, colored only on a terminal.
type printer struct {
	w     io.Writer
	color bool

	ok, warn, bad, dim, bold lipgloss.Style
}

func newPrinter(w io.Writer, noColor bool) *printer {
	color := !noColor && os.Getenv("NO_COLOR") == ""
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		color = false
	}
	return &printer{
		w:     w,
		color: color,
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		bad:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		dim:   lipgloss.NewStyle().Faint(true),
		bold:  lipgloss.NewStyle().Bold(true),
	}
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) marker(sev validation.Severity) string {
	if sev == validation.SeverityError {
		return p.style(p.bad, "✗")
	}
	return p.style(p.warn, "⚠")
}

func (p *printer) diagnostics(diags []validation.Diagnostic) {
	for _, d := range diags {
		p.printf("  %s %s\n", p.marker(d.Severity), d.Message)
		if d.Hint != "" {
			p.printf("    %s\n", p.style(p.dim, "hint: "+d.Hint))
		}
	}
}

// result prints the closing line of a verdict.
func (p *printer) result(v validation.Verdict) {
	errs, warns := len(v.Errors()), len(v.Warnings())
	if v.Valid {
		line := "✓ VALID"
		if warns > 0 {
			line += fmt.Sprintf(" (%s)", plural(warns, "warning"))
		}
		p.printf("  %s\n", p.style(p.ok, line))
		return
	}
	p.printf("  %s\n", p.style(p.bad, fmt.Sprintf("✗ INVALID (%s, %s)", plural(errs, "error"), plural(warns, "warning"))))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
