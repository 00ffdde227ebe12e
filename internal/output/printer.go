// Package output renders CLI results for a terminal.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/frahmantamala/hr-portal/internal/core/user"
)

type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors honours NO_COLOR and dumb terminals in auto mode.
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return !color.NoColor
	}
}

// Printer writes human output to out and diagnostics to err.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

func NewPrinter(mode ColorMode) *Printer {
	return NewPrinterWithWriters(os.Stdout, os.Stderr, ResolveColors(mode))
}

func NewPrinterWithWriters(out, err io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: err, useColors: useColors}
}

func (p *Printer) Out() io.Writer {
	return p.out
}

func (p *Printer) Info(format string, args ...interface{}) {
	p.colored(p.out, color.FgCyan, "", format, args...)
}

func (p *Printer) Success(format string, args ...interface{}) {
	if p.useColors {
		p.colored(p.out, color.FgGreen, "✓ ", format, args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

func (p *Printer) Warning(format string, args ...interface{}) {
	if p.useColors {
		p.colored(p.err, color.FgYellow, "⚠ ", format, args...)
		return
	}
	fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
}

func (p *Printer) Error(format string, args ...interface{}) {
	if p.useColors {
		p.colored(p.err, color.FgRed, "✗ ", format, args...)
		return
	}
	fmt.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
}

func (p *Printer) Print(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) colored(w io.Writer, attr color.Attribute, prefix, format string, args ...interface{}) {
	if p.useColors {
		color.New(attr).Fprintf(w, prefix+format+"\n", args...)
		return
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}

// RoleBadge colours a role name: Admin red, Editor yellow, Viewer plain.
func (p *Printer) RoleBadge(role user.Role) string {
	if !p.useColors {
		return string(role)
	}
	switch role {
	case user.RoleAdmin:
		return color.RedString(string(role))
	case user.RoleEditor:
		return color.YellowString(string(role))
	default:
		return string(role)
	}
}

func (p *Printer) Bold(text string) string {
	if p.useColors {
		return color.New(color.Bold).Sprint(text)
	}
	return text
}
