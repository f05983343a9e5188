// Package output formats CLI messages and tables.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Printer writes human-oriented messages. Informational output goes to out,
// warnings and errors to errOut.
type Printer struct {
	out       io.Writer
	errOut    io.Writer
	useColors bool
	quiet     bool
}

// ColorsEnabled decides whether to colour output: NO_COLOR and TERM=dumb
// always win over the configured preference.
func ColorsEnabled(configured bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return configured
}

// NewPrinter creates a printer on stdout and stderr.
func NewPrinter(useColors, quiet bool) *Printer {
	return NewPrinterWithWriters(os.Stdout, os.Stderr, useColors, quiet)
}

// NewPrinterWithWriters creates a printer on the given writers.
func NewPrinterWithWriters(out, errOut io.Writer, useColors, quiet bool) *Printer {
	return &Printer{
		out:       out,
		errOut:    errOut,
		useColors: useColors,
		quiet:     quiet,
	}
}

// Out is the writer for regular output, used by tables.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Quiet reports whether non-error output is suppressed.
func (p *Printer) Quiet() bool {
	return p.quiet
}

// Info prints an informational message.
func (p *Printer) Info(format string, args ...any) {
	if p.quiet {
		return
	}
	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Success prints a success message.
func (p *Printer) Success(format string, args ...any) {
	if p.quiet {
		return
	}
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

// Warning prints a warning message.
func (p *Printer) Warning(format string, args ...any) {
	if p.quiet {
		return
	}
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.errOut, "⚠ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.errOut, "[WARN] "+format+"\n", args...)
}

// Error prints an error message. It ignores quiet mode.
func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		color.New(color.FgRed).Fprintf(p.errOut, "✗ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.errOut, "[ERROR] "+format+"\n", args...)
}

// Print prints a plain line.
func (p *Printer) Print(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Header prints a section title with an underline.
func (p *Printer) Header(title string) {
	if p.quiet {
		return
	}
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
		color.New(color.FgWhite).Fprintf(p.out, "%s\n", strings.Repeat("─", len([]rune(title))))
		return
	}
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, strings.Repeat("-", len([]rune(title))))
}

// Field prints an aligned "key: value" line.
func (p *Printer) Field(key, value string) {
	if p.quiet {
		return
	}
	label := fmt.Sprintf("%-12s", key+":")
	if p.useColors {
		label = color.New(color.Faint).Sprint(label)
	}
	fmt.Fprintf(p.out, "%s %s\n", label, value)
}

// Status renders a request status as a badge.
func (p *Printer) Status(status string) string {
	if !p.useColors {
		return fmt.Sprintf("[%s]", status)
	}
	switch status {
	case "pending":
		return color.YellowString(status)
	case "accepted":
		return color.GreenString(status)
	case "completed":
		return color.BlueString(status)
	default:
		return color.RedString(status)
	}
}
