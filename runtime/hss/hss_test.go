package hss

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/matrixfmt"
	"github.com/aledsdavies/jugglec/runtime/compiler"
	"github.com/aledsdavies/jugglec/runtime/parser"
)

func compile(t *testing.T, src string) *matrixfmt.Pattern {
	t.Helper()
	tree, err := parser.Parse(src)
	require.NoError(t, err, "parse %q", src)
	p, err := compiler.Compile(tree.Pattern, compiler.Config{Source: src})
	require.NoError(t, err, "compile %q", src)
	return p
}

func digest(t *testing.T, p *matrixfmt.Pattern) string {
	t.Helper()
	d, err := p.Digest()
	require.NoError(t, err)
	return d
}

func TestConvertCascadeOneHand(t *testing.T) {
	// Given: a three ball cascade thrown by a single hand
	result, err := Convert("3", "1", Options{})
	require.NoError(t, err)

	// Then: one juggler throws every beat from the right hand
	assert.Equal(t, "(0,3x)!", result.Pattern)
	assert.Equal(t, 1, result.Period)
	assert.Equal(t, 1, result.NumHands)
	assert.Equal(t, 1, result.NumJugglers)
	assert.Equal(t, []float64{0.3}, result.Dwell)

	p := compile(t, result.Pattern)
	assert.Equal(t, 3, p.NumPaths)
	assert.Equal(t, 1, p.Period)
}

func TestConvertCascadeTwoHands(t *testing.T) {
	result, err := Convert("3", "2", Options{})
	require.NoError(t, err)

	assert.Equal(t, "(0,3)!(3,0)!", result.Pattern)
	assert.Equal(t, 2, result.Period)
	assert.Equal(t, 2, result.NumHands)
	assert.Equal(t, []int{1, 2}, result.BeatHands)

	wantMap := []HandAssignment{
		{Hand: 1, Juggler: 0, Side: matrixfmt.Right},
		{Hand: 2, Juggler: 0, Side: matrixfmt.Left},
	}
	if diff := cmp.Diff(wantMap, result.HandMap); diff != "" {
		t.Errorf("hand map mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertRoundTripMatchesSiteswap(t *testing.T) {
	tests := []struct {
		object, hands string
		siteswap      string
	}{
		{"3", "2", "3"},
		{"441", "2", "441"},
		{"531", "2", "531"},
	}

	for _, tt := range tests {
		t.Run(tt.object, func(t *testing.T) {
			// Given: a hand siteswap alternating two hands
			result, err := Convert(tt.object, tt.hands, Options{})
			require.NoError(t, err)

			// When: compiling both notations
			synthesized := compile(t, result.Pattern)
			direct := compile(t, tt.siteswap)

			// Then: they describe the same pattern
			assert.Equal(t, digest(t, direct), digest(t, synthesized),
				"synthesized %q", result.Pattern)
		})
	}
}

func TestConvertAcceptsRotatedPattern(t *testing.T) {
	// 3 from beat 0 lands on beat 1 and 5 from beat 1 on beat 0 (mod 2), so
	// "35" is a valid permutation; "543" is the collision case below.
	result, err := Convert("35", "1", Options{})
	require.NoError(t, err)

	assert.Equal(t, "(0,3x)!(0,5x)!", result.Pattern)
	p := compile(t, result.Pattern)
	assert.Equal(t, 4, p.NumPaths)
}

func TestConvertHandSpec(t *testing.T) {
	// Given: hand 1 on the left and hand 2 on the right. Hand pattern "1"
	// has a single hand, so (1,2) needs "2"; see the out of range case below.
	result, err := Convert("3", "2", Options{HandSpec: "(1,2)"})
	require.NoError(t, err)

	// Then: one juggler, two hands, the left hand starting
	assert.Equal(t, "(3,0)!(0,3)!", result.Pattern)
	assert.Equal(t, 1, result.NumJugglers)
	assert.Equal(t, 2, result.NumHands)
	assert.Equal(t, []float64{0.3, 0.3}, result.Dwell)
}

func TestConvertPassing(t *testing.T) {
	// Given: two one-handed jugglers sharing a cascade
	result, err := Convert("3", "2", Options{HandSpec: "(,1)(,2)"})
	require.NoError(t, err)

	assert.Equal(t, "<(0,3xp2)!(0,0)!|(0,0)!(0,3xp1)!>", result.Pattern)
	assert.Equal(t, 2, result.NumJugglers)

	p := compile(t, result.Pattern)
	assert.Equal(t, 2, p.NumJugglers)
	assert.Equal(t, 3, p.NumPaths)
}

func TestConvertModifiers(t *testing.T) {
	tests := []struct {
		name   string
		object string
		opts   Options
		want   string
	}{
		{"hold", "2", Options{Hold: true}, "(0,2H)!(2H,0)!"},
		{"no hold without option", "2", Options{}, "(0,2)!(2,0)!"},
		{"bounce", "3B", Options{}, "(0,3B)!(3B,0)!"},
		{"bounce wins over hold", "2BHF", Options{Hold: true}, "(0,2BHF)!(2BHF,0)!"},
		{"multiplex", "[43]1", Options{}, "(0,[43])!(1,0)!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Convert(tt.object, "2", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Pattern)
		})
	}
}

func TestConvertDwell(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []float64
	}{
		{"default", Options{}, []float64{0.3, 0.3}},
		{"explicit", Options{Dwell: 0.5}, []float64{0.5, 0.5}},
		{"dwellmax", Options{DwellMax: true}, []float64{1.8, 1.8}},
		{"too long is shortened", Options{Dwell: 2.5}, []float64{1.9, 1.9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Convert("3", "2", tt.opts)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, result.Dwell, 1e-9)
		})
	}
}

func TestConvertDwellMaxClampsToArrival(t *testing.T) {
	// Given: one hand throwing 1s, which arrive one beat after release
	result, err := Convert("1", "1", Options{DwellMax: true})
	require.NoError(t, err)

	// Then: dwell stays below the flight time
	assert.InDeltaSlice(t, []float64{0.8}, result.Dwell, 1e-9)
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name     string
		object   string
		hands    string
		handspec string
		stage    diag.Stage
		wantMsg  string
		offset   int
	}{
		{"object average", "34", "2", "", diag.StageHSS, "object pattern: bad average", -1},
		{"object permutation", "543", "2", "", diag.StageHSS, "object pattern: collision at beat", -1},
		{"hand average", "3", "12", "", diag.StageHSS, "hand pattern: bad average", -1},
		{"hand permutation", "3", "321", "", diag.StageHSS, "hand pattern: collision at beat", -1},
		{"unequal hand orbits", "3", "603", "", diag.StageHSS, "hand orbits have different lengths", -1},
		{"no hands", "3", "0", "", diag.StageHSS, "no hands", -1},
		{"throw without hand", "04", "20", "", diag.StageHSS, "beat 2 throws 4 but the hand pattern has no hand there", 1},
		{"object character", "3?", "2", "", diag.StageHSS, "unexpected character '?' in object pattern", 1},
		{"pass letter", "p", "2", "", diag.StageHSS, "unexpected character 'p' in object pattern", 0},
		{"unterminated multiplex", "[33", "2", "", diag.StageHSS, "unterminated multiplex", 0},
		{"bounce without throw", "B3", "2", "", diag.StageHSS, "bounce modifier must follow a throw value", 0},
		{"hand letters", "3", "2a", "", diag.StageHSS, "hand pattern accepts digits only", 1},
		{"handspec out of range", "3", "2", "(1,3)", diag.StageHandspec, "hand 3 out of range: the hand pattern has 2 hands", 3},
		{"handspec on a one-hand pattern", "3", "1", "(1,2)", diag.StageHandspec, "hand 2 out of range: the hand pattern has 1 hands", 3},
		{"handspec duplicate", "3", "2", "(1,1)", diag.StageHandspec, "hand 1 is assigned twice", 3},
		{"handspec unterminated", "3", "2", "(1,2", diag.StageHandspec, "unterminated handspec group", 0},
		{"handspec empty group", "3", "2", "(1,2)(,)", diag.StageHandspec, "juggler 2 has no hands", 5},
		{"handspec missing hand", "3", "2", "(1,)", diag.StageHandspec, "hand 2 is not assigned to a juggler", -1},
		{"handspec stray character", "3", "2", "x(1,2)", diag.StageHandspec, "expected '(' in handspec", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(tt.object, tt.hands, Options{HandSpec: tt.handspec})
			require.Error(t, err)

			var uerr *diag.UserError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, tt.stage, uerr.Stage)
			assert.Contains(t, uerr.Message, tt.wantMsg)
			if tt.offset >= 0 {
				assert.Equal(t, tt.offset, uerr.Offset)
			}
		})
	}
}

func TestDefaultHandSpec(t *testing.T) {
	got, jugglers := defaultHandSpec(3)

	want := []HandAssignment{
		{Hand: 1, Juggler: 0, Side: matrixfmt.Right},
		{Hand: 2, Juggler: 1, Side: matrixfmt.Right},
		{Hand: 3, Juggler: 0, Side: matrixfmt.Left},
	}
	assert.Equal(t, 2, jugglers)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("default handspec mismatch (-want +got):\n%s", diff)
	}
}
