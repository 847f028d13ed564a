package mhn

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/matrixfmt"
)

func coord(x, y, z float64) *matrixfmt.Coordinate {
	return &matrixfmt.Coordinate{X: x, Y: y, Z: z}
}

func TestParseHandsSingleBeat(t *testing.T) {
	got, err := ParseHands("(10)(32.5).")
	require.NoError(t, err)

	want := []matrixfmt.PathSpec{{
		Juggler: 0,
		Beats: []matrixfmt.PathBeat{{
			Coords:     []*matrixfmt.Coordinate{coord(10, 0, 0), coord(32.5, 0, 0)},
			ThrowIndex: 0,
			CatchIndex: 1,
		}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDecimalCoordinates(t *testing.T) {
	// Given: decimal points inside coordinates of several beats and jugglers
	hands, err := ParseHands("(12.5)(-3.75,1.5).(0)(1)|(2.5)(3)")
	require.NoError(t, err)

	// Then: only '.' outside parentheses separates beats
	require.Len(t, hands, 2)
	require.Len(t, hands[0].Beats, 2)
	assert.Equal(t, []*matrixfmt.Coordinate{coord(12.5, 0, 0), coord(-3.75, 0, 1.5)}, hands[0].Beats[0].Coords)
	require.Len(t, hands[1].Beats, 1)
	assert.Equal(t, []*matrixfmt.Coordinate{coord(2.5, 0, 0), coord(3, 0, 0)}, hands[1].Beats[0].Coords)

	body, err := ParseBody("(0.5,1.5).(2,3,97.5)")
	require.NoError(t, err)
	require.Len(t, body[0].Beats, 2)
	assert.Equal(t, []*matrixfmt.Coordinate{coord(0.5, 1.5, DefaultBodyZ)}, body[0].Beats[0].Coords)
	assert.Equal(t, []*matrixfmt.Coordinate{coord(2, 3, 97.5)}, body[0].Beats[1].Coords)
}

func TestParseHandsReordersComponents(t *testing.T) {
	// Given: hand coordinates written (x,z,y)
	got, err := ParseHands("(1,2,3)(4,5)")
	require.NoError(t, err)

	// Then: they are stored (x,y,z)
	require.Len(t, got, 1)
	require.Len(t, got[0].Beats, 1)
	assert.Equal(t, coord(1, 3, 2), got[0].Beats[0].Coords[0])
	assert.Equal(t, coord(4, 0, 5), got[0].Beats[0].Coords[1])
}

func TestParseHandsMarkers(t *testing.T) {
	got, err := ParseHands("T(10)C(20)-.(5)-(15)")
	require.NoError(t, err)

	require.Len(t, got[0].Beats, 2)
	first := got[0].Beats[0]
	assert.Equal(t, 0, first.ThrowIndex)
	assert.Equal(t, 0, first.CatchIndex, "C marks the preceding token")
	assert.Len(t, first.Coords, 3)
	assert.Nil(t, first.Coords[2])

	second := got[0].Beats[1]
	assert.Equal(t, 2, second.CatchIndex, "catch defaults to the last token")
}

func TestParseHandsJugglersAndDecoration(t *testing.T) {
	got, err := ParseHands("<(10)(20).(30)(40).|{(1)(2)}!(3)(4)>")
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].Juggler)
	assert.Equal(t, 2, got[0].Period())
	assert.Equal(t, 1, got[1].Juggler)
	assert.Equal(t, 1, got[1].Period())
	assert.Equal(t, 2, got[2].Juggler)
	assert.Equal(t, coord(3, 0, 0), got[2].Beats[0].Coords[0])
}

func TestParseHandsRepeat(t *testing.T) {
	expanded, err := ParseHands("((10)(20).)^3")
	require.NoError(t, err)
	written, err := ParseHands("(10)(20).(10)(20).(10)(20).")
	require.NoError(t, err)

	if diff := cmp.Diff(written, expanded); diff != "" {
		t.Errorf("repeat mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, expanded[0].Period())
}

func TestParseBody(t *testing.T) {
	got, err := ParseBody("(0,10).(5,5,90)..")
	require.NoError(t, err)

	require.Len(t, got, 1)
	beats := got[0].Beats
	require.Len(t, beats, 3)
	assert.Equal(t, []*matrixfmt.Coordinate{coord(0, 10, DefaultBodyZ)}, beats[0].Coords)
	assert.Equal(t, []*matrixfmt.Coordinate{coord(5, 5, 90)}, beats[1].Coords)
	assert.Equal(t, []*matrixfmt.Coordinate{nil}, beats[2].Coords, "an empty beat is one placeholder")
	assert.Equal(t, 0, beats[2].CatchIndex)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) ([]matrixfmt.PathSpec, error)
		input   string
		stage   diag.Stage
		wantMsg string
		offset  int
	}{
		{"unterminated paren", ParseHands, "(10)(20", diag.StageHands, "unterminated '('", 4},
		{"malformed number", ParseHands, "(10)(2x)", diag.StageHands, `malformed number "2x"`, 5},
		{"malformed second component", ParseHands, "(10)(2,y)", diag.StageHands, `malformed number "y"`, 7},
		{"too many components", ParseBody, "(1,2,3,4)", diag.StageBody, "too many components", 1},
		{"throw not first", ParseHands, "(10)T(20)", diag.StageHands, "throw marker must be the first token", 4},
		{"duplicate throw", ParseHands, "TT(10)(20)", diag.StageHands, "duplicate throw marker", 1},
		{"duplicate catch", ParseHands, "(10)C(20)C", diag.StageHands, "duplicate catch marker", 9},
		{"catch first", ParseHands, "C(10)(20)", diag.StageHands, "catch marker before any coordinate", 0},
		{"too few", ParseHands, "(10)", diag.StageHands, "too few coordinates: a hand beat needs at least 2, got 1", 0},
		{"empty hand beat", ParseHands, "(10)(20)..(1)(2)", diag.StageHands, "too few coordinates", 9},
		{"missing throw", ParseHands, "-(20)", diag.StageHands, "missing throw coordinate", 0},
		{"missing catch", ParseHands, "(10)(20)-", diag.StageHands, "missing catch coordinate", 0},
		{"unknown character", ParseBody, "(1)q", diag.StageBody, "unexpected character 'q'", 3},
		{"throw marker in body", ParseBody, "T(1)", diag.StageBody, "unexpected character 'T'", 0},
		{"repeat without group", ParseHands, "(10)(20).^2", diag.StageHands, "'^' must follow a parenthesised group", 9},
		{"repeat without count", ParseHands, "((10)(20))^", diag.StageHands, "expected a repeat count", 10},
		{"nested repeats", ParseHands, "((((10)(32.5).)^1000)^1000)^1000", diag.StageHands, "repeats expand to more than 65536 characters", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parse(tt.input)
			require.Error(t, err)

			var uerr *diag.UserError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, tt.stage, uerr.Stage)
			assert.Contains(t, uerr.Message, tt.wantMsg)
			assert.Equal(t, tt.offset, uerr.Offset)
		})
	}
}
