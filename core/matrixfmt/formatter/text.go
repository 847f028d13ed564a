// Package formatter provides human-readable formatting for compiled patterns.
// This includes text output, a ladder view and matrix diffs.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/jugglec/core/matrixfmt"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Colorize wraps text in ANSI color codes if color is enabled
func Colorize(text, color string, useColor bool) string {
	if !useColor {
		return text
	}
	return color + text + ColorReset
}

// Format returns a text summary of the pattern followed by one line per beat
// of the period.
//
// Format:
//
//	pattern: <source>
//	jugglers: 1  paths: 3  period: 2  max occupancy: 1
//	symmetry: delay (1) every 2
//	beat 0: J1R 3 -> J1L@3
func Format(p *matrixfmt.Pattern) string {
	var b strings.Builder

	fmt.Fprintf(&b, "pattern: %s\n", p.Source)
	if p.Title != "" {
		fmt.Fprintf(&b, "title: %s\n", p.Title)
	}
	fmt.Fprintf(&b, "jugglers: %d  paths: %d  period: %d  max occupancy: %d\n",
		p.NumJugglers, p.NumPaths, p.Period, p.MaxOccupancy)
	for _, s := range p.Symmetries {
		fmt.Fprintf(&b, "symmetry: %s %s every %d\n", s.Kind, s.JugglerPerm, s.Period)
	}
	for beat := 0; beat < p.Period; beat++ {
		fmt.Fprintf(&b, "beat %d: %s\n", beat, FormatBeat(p, beat))
	}
	for _, w := range p.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}

	return b.String()
}

// FormatBeat renders every non-placeholder throw made on beat, separated by
// "; ". An empty beat renders as "-".
func FormatBeat(p *matrixfmt.Pattern, beat int) string {
	if p.Matrix == nil || !p.Matrix.InBounds(beat) {
		return "-"
	}
	var parts []string
	for j := 0; j < p.Matrix.Jugglers; j++ {
		for _, h := range []matrixfmt.Hand{matrixfmt.Left, matrixfmt.Right} {
			for _, t := range p.Matrix.Throws(j, h, beat) {
				if t.Value == 0 {
					continue
				}
				parts = append(parts, FormatThrow(t))
			}
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}

// FormatThrow renders one throw as "J1R 3 -> J1L@3", with " hold" or a tag
// appended when it is not a plain throw.
func FormatThrow(t *matrixfmt.Throw) string {
	var b strings.Builder
	fmt.Fprintf(&b, "J%d%s %s -> J%d%s@%d",
		t.SourceJuggler+1, t.SourceHand, valueText(t.Value),
		t.DestJuggler+1, t.DestHand, t.TargetBeat)
	switch t.Mod.Kind {
	case matrixfmt.Hold:
		b.WriteString(" hold")
	case matrixfmt.Unresolved:
		b.WriteString(" ?")
	}
	if t.Mod.Tag != "" {
		b.WriteString(" ")
		b.WriteString(t.Mod.Tag)
	}
	return b.String()
}

func valueText(v int) string {
	if v >= 10 && v < 36 {
		return string(rune('a' + v - 10))
	}
	return fmt.Sprint(v)
}

// FormatLadder writes a ladder view: one row per beat, one column per hand.
//
//	beat  J1L    J1R
//	   0  .      3
//	   1  3      .
func FormatLadder(w io.Writer, p *matrixfmt.Pattern, useColor bool) {
	if p.Matrix == nil {
		return
	}

	header := []string{"beat"}
	for j := 0; j < p.NumJugglers; j++ {
		header = append(header, fmt.Sprintf("J%dL", j+1), fmt.Sprintf("J%dR", j+1))
	}
	_, _ = fmt.Fprintln(w, Colorize(padRow(header), ColorGray, useColor))

	for beat := 0; beat < p.Period; beat++ {
		row := []string{fmt.Sprintf("%4d", beat)}
		for j := 0; j < p.NumJugglers; j++ {
			for _, h := range []matrixfmt.Hand{matrixfmt.Left, matrixfmt.Right} {
				row = append(row, ladderCell(p.Matrix.Throws(j, h, beat), p.NumJugglers, useColor))
			}
		}
		_, _ = fmt.Fprintln(w, padRow(row))
	}
}

func ladderCell(throws []*matrixfmt.Throw, jugglers int, useColor bool) string {
	var vals []string
	for _, t := range throws {
		if t.Value == 0 {
			continue
		}
		s := valueText(t.Value)
		if t.SourceHand != t.DestHand {
			s += "x"
		}
		if jugglers > 1 && t.DestJuggler != t.SourceJuggler {
			s += fmt.Sprintf("p%d", t.DestJuggler+1)
		}
		if t.Mod.Kind == matrixfmt.Hold {
			s = Colorize(s, ColorCyan, useColor)
		}
		vals = append(vals, s)
	}
	switch len(vals) {
	case 0:
		return "."
	case 1:
		return vals[0]
	default:
		return "[" + strings.Join(vals, " ") + "]"
	}
}

func padRow(cells []string) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(c)
		if i < len(cells)-1 {
			if pad := 5 - visibleLen(c); pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
	}
	return b.String()
}

// visibleLen ignores ANSI escape sequences.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
		case inEscape && r == 'm':
			inEscape = false
		case !inEscape:
			n++
		}
	}
	return n
}
