// Package ui renders user-facing notices on a terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// Notifier shows notices to the user. Success and Error report the outcome
// of a request; Prompt asks the user to fix their input before anything is
// sent.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Prompt(msg string)
}

// Console writes notices to a terminal stream.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
}

// NewConsole returns a console writing to out (stderr when nil).
func NewConsole(out io.Writer, noColor bool) *Console {
	if out == nil {
		out = os.Stderr
	}
	return &Console{out: out, noColor: noColor}
}

// SetNoColor toggles ANSI colors. Call it before the console is shared.
func (c *Console) SetNoColor(v bool) { c.noColor = v }

// Colorize wraps text in color unless colors are off.
func (c *Console) Colorize(color, text string) string {
	if c.noColor {
		return text
	}
	return color + text + colorReset
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *Console) Success(msg string) { c.println(c.Colorize(colorGreen, "✓ "+msg)) }
func (c *Console) Error(msg string)   { c.println(c.Colorize(colorRed, "✗ "+msg)) }
func (c *Console) Prompt(msg string)  { c.println(c.Colorize(colorYellow, "⚠ "+msg)) }

// Step prints a progress line.
func (c *Console) Step(format string, args ...any) {
	c.println(c.Colorize(colorCyan, "→ "+fmt.Sprintf(format, args...)))
}

// Status prints an indented "label: value" line.
func (c *Console) Status(label, format string, args ...any) {
	c.println(fmt.Sprintf("  %s %s", c.Colorize(colorBold, label+":"), fmt.Sprintf(format, args...)))
}

// Bold is a convenience for Colorize(bold).
func (c *Console) Bold(text string) string { return c.Colorize(colorBold, text) }

// Cyan is a convenience for Colorize(cyan).
func (c *Console) Cyan(text string) string { return c.Colorize(colorCyan, text) }

// Dim is a convenience for Colorize(dim).
func (c *Console) Dim(text string) string { return c.Colorize(colorDim, text) }

// Red is a convenience for Colorize(red).
func (c *Console) Red(text string) string { return c.Colorize(colorRed, text) }
