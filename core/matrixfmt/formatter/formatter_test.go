package formatter_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aledsdavies/jugglec/core/matrixfmt"
	"github.com/aledsdavies/jugglec/core/matrixfmt/formatter"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// async builds a one-juggler asynchronous pattern from throw values, right
// hand on even beats.
func async(source string, values ...int) *matrixfmt.Pattern {
	period := len(values)
	m := matrixfmt.NewMatrix(1, period+10, 1)
	for beat := 0; beat < period; beat++ {
		v := values[beat]
		hand := matrixfmt.HandFromLeft(beat%2 == 1)
		dest := hand
		if v%2 == 1 {
			dest = hand.Opposite()
		}
		kind := matrixfmt.Thrown
		if v <= 2 {
			kind = matrixfmt.Hold
		}
		m.Set(&matrixfmt.Throw{
			SourceHand: hand,
			Beat:       beat,
			Value:      v,
			DestHand:   dest,
			TargetBeat: beat + v,
			HandsIndex: -1,
			Mod:        matrixfmt.Modifier{Kind: kind},
		})
	}
	return &matrixfmt.Pattern{
		Source:       source,
		NumJugglers:  1,
		Period:       period,
		MaxOccupancy: 1,
		Matrix:       m,
		Symmetries:   []matrixfmt.Symmetry{{Kind: matrixfmt.Delay, JugglerPerm: "(1)", Period: period}},
	}
}

func TestFormat(t *testing.T) {
	p := async("531", 5, 3, 1)
	p.NumPaths = 3
	p.Warnings = []string{"unknown key 'colour'"}

	want := strings.Join([]string{
		"pattern: 531",
		"jugglers: 1  paths: 3  period: 3  max occupancy: 1",
		"symmetry: delay (1) every 3",
		"beat 0: J1R 5 -> J1L@5",
		"beat 1: J1L 3 -> J1R@4",
		"beat 2: J1R 1 -> J1L@3 hold",
		"warning: unknown key 'colour'",
		"",
	}, "\n")

	if diff := cmp.Diff(want, formatter.Format(p)); diff != "" {
		t.Errorf("Format mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatBeatSkipsZeros(t *testing.T) {
	p := async("30", 3, 0)
	assert.Equal(t, "-", formatter.FormatBeat(p, 1))
	assert.Equal(t, "-", formatter.FormatBeat(p, 999))
}

func TestFormatThrowTag(t *testing.T) {
	th := &matrixfmt.Throw{
		SourceJuggler: 1,
		SourceHand:    matrixfmt.Left,
		Value:         10,
		DestHand:      matrixfmt.Left,
		TargetBeat:    10,
		Mod:           matrixfmt.Modifier{Kind: matrixfmt.Thrown, Tag: "BL"},
	}
	assert.Equal(t, "J2L a -> J1L@10 BL", formatter.FormatThrow(th))
}

func TestFormatLadder(t *testing.T) {
	var buf bytes.Buffer
	formatter.FormatLadder(&buf, async("42", 4, 2), false)

	want := strings.Join([]string{
		"beat   J1L    J1R",
		"   0   .      4",
		"   1   2      .",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("ladder mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatLadderColorsHolds(t *testing.T) {
	var buf bytes.Buffer
	formatter.FormatLadder(&buf, async("42", 4, 2), true)
	assert.Contains(t, buf.String(), formatter.ColorCyan+"2"+formatter.ColorReset)
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name         string
		expected     *matrixfmt.Pattern
		actual       *matrixfmt.Pattern
		wantAdded    int
		wantRemoved  int
		wantModified int
		wantHeader   int
	}{
		{
			name:     "identical patterns",
			expected: async("441", 4, 4, 1),
			actual:   async("441", 4, 4, 1),
		},
		{
			name:         "beat modified",
			expected:     async("441", 4, 4, 1),
			actual:       async("531", 5, 3, 1),
			wantModified: 2,
		},
		{
			name:       "beats added",
			expected:   async("3", 3),
			actual:     async("423", 4, 2, 3),
			wantAdded:  2,
			wantHeader: 1,
			// beat 0 changes from 3 to 4
			wantModified: 1,
		},
		{
			name:        "beats removed",
			expected:    async("423", 4, 2, 3),
			actual:      async("4", 4),
			wantRemoved: 2,
			wantHeader:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatter.Diff(tt.expected, tt.actual)
			assert.Len(t, result.Added, tt.wantAdded, "added")
			assert.Len(t, result.Removed, tt.wantRemoved, "removed")
			assert.Len(t, result.Modified, tt.wantModified, "modified")
			assert.Len(t, result.HeaderChanges, tt.wantHeader, "header")
		})
	}
}

func TestFormatDiff(t *testing.T) {
	result := formatter.Diff(async("441", 4, 4, 1), async("531", 5, 3, 1))
	out := formatter.FormatDiff(result, false)

	assert.Contains(t, out, "Modified beats:")
	assert.Contains(t, out, "- J1R 4 -> J1R@4")
	assert.Contains(t, out, "+ J1R 5 -> J1L@5")
	assert.NotContains(t, out, "No differences found.")
	assert.NotContains(t, out, "\033[")
}

func TestFormatDiffEmpty(t *testing.T) {
	result := formatter.Diff(async("3", 3), async("3", 3))
	assert.True(t, result.Empty())
	assert.Equal(t, "No differences found.\n", formatter.FormatDiff(result, true))
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "x", formatter.Colorize("x", formatter.ColorRed, false))
	assert.Equal(t, "\033[31mx\033[0m", formatter.Colorize("x", formatter.ColorRed, true))
}
