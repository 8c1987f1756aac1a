// Package ui provides terminal output helpers for the CLI: status
// lines, key/value summaries, and TTY/color detection.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Printer writes styled CLI output.
type Printer struct {
	out    io.Writer
	styles Styles
}

// NewPrinter creates a printer for w. Color is disabled automatically
// for non-terminals, NO_COLOR, and CI environments.
func NewPrinter(w io.Writer) *Printer {
	noColor := !IsTTY(w) || DetectNoColor() || DetectCI()
	return &Printer{out: w, styles: GetStyles(noColor)}
}

// NewPlainPrinter creates a printer with styling disabled.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{out: w, styles: NoColorStyles()}
}

// Header prints a section heading.
func (p *Printer) Header(text string) {
	fmt.Fprintln(p.out, p.styles.Header.Render(text))
}

// Successf prints a success line.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Success.Render("✓ ")+fmt.Sprintf(format, args...))
}

// Warnf prints a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Warning.Render("! ")+fmt.Sprintf(format, args...))
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Error.Render("✗ ")+fmt.Sprintf(format, args...))
}

// Stepf prints a progress step.
func (p *Printer) Stepf(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Dim.Render("→ ")+fmt.Sprintf(format, args...))
}

// KeyValue prints an aligned label: value line.
func (p *Printer) KeyValue(key, value string) {
	fmt.Fprintf(p.out, "  %s %s\n",
		p.styles.Label.Render(fmt.Sprintf("%-14s", key+":")),
		p.styles.Value.Render(value))
}

// Panel prints text inside a bordered box.
func (p *Printer) Panel(text string) {
	fmt.Fprintln(p.out, p.styles.Panel.Render(strings.TrimRight(text, "\n")))
}

// IsTTY checks whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor reports whether NO_COLOR is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI reports whether we are running under a CI system.
func DetectCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"} {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
