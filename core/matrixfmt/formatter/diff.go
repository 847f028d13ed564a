package formatter

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/jugglec/core/matrixfmt"
)

// DiffResult represents the differences between two compiled patterns.
type DiffResult struct {
	HeaderChanges []string   // "period: 2 -> 4", ...
	Added         []BeatDiff // Beats only present in actual
	Removed       []BeatDiff // Beats only present in expected
	Modified      []BeatDiff // Beats whose throws changed
}

// BeatDiff represents a difference on a single beat.
type BeatDiff struct {
	Beat     int
	Expected string // Formatted expected beat (empty for added beats)
	Actual   string // Formatted actual beat (empty for removed beats)
}

// Empty reports whether the two patterns were equivalent.
func (d *DiffResult) Empty() bool {
	return len(d.HeaderChanges) == 0 && len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// Diff compares two patterns beat by beat over their periods.
func Diff(expected, actual *matrixfmt.Pattern) *DiffResult {
	result := &DiffResult{}

	header := func(name string, a, b int) {
		if a != b {
			result.HeaderChanges = append(result.HeaderChanges, fmt.Sprintf("%s: %d -> %d", name, a, b))
		}
	}
	header("jugglers", expected.NumJugglers, actual.NumJugglers)
	header("paths", expected.NumPaths, actual.NumPaths)
	header("period", expected.Period, actual.Period)

	maxBeats := expected.Period
	if actual.Period > maxBeats {
		maxBeats = actual.Period
	}

	for beat := 0; beat < maxBeats; beat++ {
		switch {
		case beat >= actual.Period:
			result.Removed = append(result.Removed, BeatDiff{Beat: beat, Expected: FormatBeat(expected, beat)})
		case beat >= expected.Period:
			result.Added = append(result.Added, BeatDiff{Beat: beat, Actual: FormatBeat(actual, beat)})
		default:
			e, a := FormatBeat(expected, beat), FormatBeat(actual, beat)
			if e != a {
				result.Modified = append(result.Modified, BeatDiff{Beat: beat, Expected: e, Actual: a})
			}
		}
	}

	return result
}

// FormatDiff returns a human-readable diff display.
func FormatDiff(result *DiffResult, useColor bool) string {
	var b strings.Builder

	if len(result.HeaderChanges) > 0 {
		for _, c := range result.HeaderChanges {
			fmt.Fprintln(&b, Colorize(c, ColorYellow, useColor))
		}
		fmt.Fprintln(&b)
	}

	if len(result.Modified) > 0 {
		fmt.Fprintln(&b, Colorize("Modified beats:", ColorYellow, useColor))
		for _, d := range result.Modified {
			fmt.Fprintf(&b, "  beat %d:\n", d.Beat)
			fmt.Fprintf(&b, "    %s\n", Colorize("- "+d.Expected, ColorRed, useColor))
			fmt.Fprintf(&b, "    %s\n", Colorize("+ "+d.Actual, ColorGreen, useColor))
		}
		fmt.Fprintln(&b)
	}

	if len(result.Added) > 0 {
		fmt.Fprintln(&b, Colorize("Added beats:", ColorGreen, useColor))
		for _, d := range result.Added {
			fmt.Fprintf(&b, "  %s\n", Colorize(fmt.Sprintf("+ beat %d: %s", d.Beat, d.Actual), ColorGreen, useColor))
		}
		fmt.Fprintln(&b)
	}

	if len(result.Removed) > 0 {
		fmt.Fprintln(&b, Colorize("Removed beats:", ColorRed, useColor))
		for _, d := range result.Removed {
			fmt.Fprintf(&b, "  %s\n", Colorize(fmt.Sprintf("- beat %d: %s", d.Beat, d.Expected), ColorRed, useColor))
		}
		fmt.Fprintln(&b)
	}

	if result.Empty() {
		fmt.Fprintln(&b, "No differences found.")
	}

	return b.String()
}
