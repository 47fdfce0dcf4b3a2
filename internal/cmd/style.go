package cmd

import (
	"os"

	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/borzacchiello/statelogic"
)

const (
	activeColor   = "#22c55e"
	inactiveColor = "#94a3b8"
)

// newStyle returns the style for the given --color mode, or nil for plain
// output.
func newStyle(mode string) (statelogic.Style, error) {
	switch mode {
	case "never":
		return nil, nil
	case "auto":
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil
		}
	case "always":
	default:
		return nil, errors.Errorf("invalid color mode %q", mode)
	}

	p := termenv.ColorProfile()
	if p == termenv.Ascii {
		p = termenv.ANSI256
	}
	return func(text string, active bool) string {
		if active {
			return termenv.String(text).Foreground(p.Color(activeColor)).Bold().String()
		}
		return termenv.String(text).Foreground(p.Color(inactiveColor)).String()
	}, nil
}

// valueCell renders a value, colored when it is all ones.
func valueCell(v statelogic.BitVector, style statelogic.Style) string {
	text := statelogic.ValueText(v)
	if style == nil {
		return text
	}
	return style(text, v.IsAllOnes())
}
