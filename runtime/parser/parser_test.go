package parser

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/notation"
)

func mustParse(t *testing.T, src string) *notation.Pattern {
	t.Helper()
	tree, err := Parse(src)
	require.NoError(t, err, "parse %q", src)
	require.NotNil(t, tree.Pattern)
	return tree.Pattern
}

func TestParseAsyncTree(t *testing.T) {
	got := mustParse(t, "5 3x")

	want := &notation.Pattern{
		Items: []notation.Node{
			&notation.SoloSequence{
				Items: []notation.Node{
					&notation.SoloMultiThrow{
						Throws: []*notation.SoloSingleThrow{{Value: 5}},
					},
					&notation.SoloMultiThrow{
						Throws: []*notation.SoloSingleThrow{{Value: 3, Crossing: true, Offset: 2}},
						Offset: 2,
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRoundTripsThroughString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"531", "531"},
		{"b97531", "b97531"},
		{"(4,2x)", "(4,2x)"},
		{"(4x,4x)!", "(4x,4x)!"},
		{"[43]23", "[43]23"},
		{"( [22] , [2 2] )", "([22],[22])"},
		{"3BHF 3BL 3H 3T", "3BHF3BL3H3T"},
		{"R3L3", "R3L3"},
		{"(3)^2", "(3)^2"},
		{"((3)^2 4)^3", "((3)^2 4)^3"},
		{"3*", "3*"},
		{"(4,2x)*", "(4,2x)*"},
		{"<3p|3p>", "<3p|3p>"},
		{"<3xp2|3p1>", "<3xp2|3p1>"},
		{"<[3p 1]|3p 1>", "<[3p 1]|3p 1>"},
		{"<3p2x|3>", "<3xp2|3>"},
		{"<(4p,3)!|(3,4p)!>", "<(4p,3)!|(3,4p)!>"},
		{"<(3p)^2|3p23p2><3|3>", "<(3p)^2|3p23p2><3|3>"},
		{"<R3|L3>", "<R3|L3>"},
		{"?", "?"},
		{"{40}3", "{40}3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := mustParse(t, tt.input).String()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGroupingItems(t *testing.T) {
	p := mustParse(t, "3(4)^2<3p|3p><3|3>5")

	var kinds []notation.Kind
	for _, item := range p.Items {
		kinds = append(kinds, item.Kind())
	}
	want := []notation.Kind{
		notation.KindSoloSequence,
		notation.KindGroupedPattern,
		notation.KindPassingSequence,
		notation.KindSoloSequence,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("item kinds mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, p.Items[2].(*notation.PassingSequence).Groups, 2)
}

func TestParsePairedFirstIsLeft(t *testing.T) {
	p := mustParse(t, "(6x,4)")
	paired := p.Items[0].(*notation.SoloSequence).Items[0].(*notation.SoloPairedThrow)

	assert.Equal(t, 6, paired.Left.Throws[0].Value)
	assert.True(t, paired.Left.Throws[0].Crossing)
	assert.Equal(t, 4, paired.Right.Throws[0].Value)
	assert.False(t, paired.Bang)
}

func TestParsePassDestination(t *testing.T) {
	p := mustParse(t, "<3p13|3p>")
	part := p.Items[0].(*notation.PassingSequence).Groups[0].Parts[0]

	require.Len(t, part.Items, 2)
	first := part.Items[0].(*notation.PassingMultiThrow).Throws[0]
	second := part.Items[1].(*notation.PassingMultiThrow).Throws[0]

	assert.True(t, first.Pass)
	assert.Equal(t, 1, first.DestJuggler)
	assert.Equal(t, 3, second.Value)
	assert.False(t, second.Pass)
}

func TestParseRepeatCount(t *testing.T) {
	p := mustParse(t, "(3)^12")
	assert.Equal(t, 12, p.Items[0].(*notation.GroupedPattern).Repeats)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
		wantPos int // 0-based byte offset
	}{
		{"empty", "  ", "empty pattern", 2},
		{"illegal character", "3#", `unexpected character "#"`, 1},
		{"pass in solo", "3p", "passes are only allowed inside a passing group", 1},
		{"cross without value", "x3", `"x" must follow a throw value`, 0},
		{"bang after async", "3!", "'!' may only follow a synchronous throw", 1},
		{"unclosed paired", "(3,3", `expected ")" to close "(" at position 1`, 4},
		{"unclosed multiplex", "[33", `expected "]" to close "[" at position 1`, 3},
		{"unclosed group", "(33", `expected ")" to close "(" at position 1`, 3},
		{"unclosed passing", "<3|3", `expected ">" to close "<" at position 1`, 4},
		{"unmatched close", "3)", "unmatched ')'", 1},
		{"missing repeat", "(33)", "expected '^' and a repeat count after group", 4},
		{"zero repeat", "(33)^0", "repeat count must be at least 1", 5},
		{"repeat without count", "(3)^", "unexpected end of input, expected a repeat count", 4},
		{"empty group", "()^2", "empty group", 0},
		{"empty multiplex", "[]", "empty multiplex", 0},
		{"nested multiplex", "[3[3]]", "multiplexes cannot be nested", 2},
		{"three hands", "(3,3,3)", "a synchronous throw has exactly two hands", 4},
		{"star not last", "3*3", "'*' must be the last character of the pattern", 2},
		{"double star", "3**", "'*' must be the last character of the pattern", 2},
		{"one juggler group", "<3p>", "a passing group needs at least two jugglers", 0},
		{"empty part", "<3||3>", `unexpected "|", expected a throw`, 3},
		{"nested passing", "<3|<3|3>>", "passing groups cannot be nested", 3},
		{"nested group in part", "<((3)^2)^2|3>", "groups cannot be nested inside a juggler's part", 2},
		{"duplicate cross", "<3xpx|3>", "duplicate 'x'", 4},
		{"stray letter", "3F", `unexpected "F", expected a throw`, 1},
		{"missing comma value", "(,3)", `unexpected ",", expected a throw value`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, tree.Pattern)

			var ue *diag.UserError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, diag.StageParse, ue.Stage)
			assert.Equal(t, tt.wantMsg, ue.Message)
			assert.Equal(t, tt.wantPos, ue.Offset)
		})
	}
}

func TestParseErrorSnippet(t *testing.T) {
	_, err := Parse("53#1")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "   | 53#1\n   |   ^")
}

func TestParseTelemetry(t *testing.T) {
	tree, err := Parse("(3)^2", WithTelemetryTiming())
	require.NoError(t, err)
	require.NotNil(t, tree.Telemetry)

	assert.Equal(t, 6, tree.Telemetry.TokenCount)
	// Pattern, GroupedPattern, SoloSequence, SoloMultiThrow, SoloSingleThrow
	assert.Equal(t, 5, tree.Telemetry.NodeCount)
	assert.GreaterOrEqual(t, tree.Telemetry.TotalTime, tree.Telemetry.ParseTime)
}

func TestParseNoTelemetryByDefault(t *testing.T) {
	tree, err := Parse("3")
	require.NoError(t, err)
	assert.Nil(t, tree.Telemetry)
	assert.Nil(t, tree.DebugEvents)
}

func TestParseDebugEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	tree, err := Parse("<3p|(3)^1>", WithDebugDetailed(), WithLogger(logger))
	require.NoError(t, err)

	var events []string
	for _, e := range tree.DebugEvents {
		events = append(events, e.Event)
	}
	want := []string{
		"enter_pattern",
		"enter_passingGroup",
		"enter_grouped",
		"exit_grouped",
		"exit_passingGroup",
		"exit_pattern",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("debug events mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, buf.String(), `"event":"enter_grouped"`)
	assert.Contains(t, buf.String(), `"type":"PASS"`)
}
