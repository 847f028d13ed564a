package config_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/jugglec/core/config"
	"github.com/aledsdavies/jugglec/core/diag"
)

func TestParseShorthand(t *testing.T) {
	cfg, err := config.Parse("  531 ")
	require.NoError(t, err)

	assert.Equal(t, "531", cfg.Pattern)
	assert.True(t, cfg.Has("pattern"))
	assert.False(t, cfg.Has("hss"))
	assert.True(t, cfg.DwellMax)
	assert.Empty(t, cfg.Warnings)
}

func TestParseAllKeys(t *testing.T) {
	cfg, err := config.Parse("Pattern=3; HSS=2 ;handspec=(1,2);hold=yes;dwellmax=0;dwell=0.4;bps=5.5;" +
		"hands=(10)(32.5).;body=(0,0,100).;title=cascade;prop=ball")
	require.NoError(t, err)

	assert.Equal(t, "3", cfg.Pattern)
	assert.Equal(t, "2", cfg.HSS)
	assert.Equal(t, "(1,2)", cfg.Handspec)
	assert.True(t, cfg.Hold)
	assert.False(t, cfg.DwellMax)
	assert.Equal(t, 0.4, cfg.Dwell)
	assert.Equal(t, 5.5, cfg.BPS)
	assert.Equal(t, "(10)(32.5).", cfg.Hands)
	assert.Equal(t, "(0,0,100).", cfg.Body)
	assert.Equal(t, "cascade", cfg.Title())

	want := map[string]string{"title": "cascade", "prop": "ball"}
	if diff := cmp.Diff(want, cfg.Passthrough); diff != "" {
		t.Errorf("passthrough mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWarnings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "misspelled key suggests subsequence match",
			input: "pattern=3;titl=x",
			want:  []string{`unknown key "titl" (did you mean "title"?)`},
		},
		{
			name:  "extra letter suggests by edit distance",
			input: "pattern=3;bpss=4",
			want:  []string{`unknown key "bpss" (did you mean "bps"?)`},
		},
		{
			name:  "unrelated key",
			input: "pattern=3;zzzzzzzz=1",
			want:  []string{`unknown key "zzzzzzzz"`},
		},
		{
			name:  "duplicate key",
			input: "pattern=3;pattern=4",
			want:  []string{`key "pattern" given more than once; using the last value`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Parse(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, cfg.Warnings); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDuplicateKeepsLast(t *testing.T) {
	cfg, err := config.Parse("pattern=3;pattern=441")
	require.NoError(t, err)
	assert.Equal(t, "441", cfg.Pattern)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty", "   ", "empty configuration"},
		{"missing pattern", "hss=3", `missing required key "pattern"`},
		{"empty pattern", "pattern=", `invalid value "" for key "pattern"`},
		{"segment without equals", "pattern=3;hold", `expected key=value, got "hold"`},
		{"missing key", "pattern=3;=4", "missing key before '='"},
		{"bad boolean", "pattern=3;hss=3;hold=maybe", `invalid value "maybe" for key "hold"`},
		{"zero dwell", "pattern=3;hss=3;dwell=0", `invalid value "0" for key "dwell"`},
		{"negative bps", "pattern=3;bps=-1", `invalid value "-1" for key "bps"`},
		{"non-numeric bps", "pattern=3;bps=fast", `invalid value "fast" for key "bps"`},
		{"handspec without hss", "pattern=3;handspec=(1,2)", `key "handspec" requires an hss key`},
		{"dwell without hss", "pattern=3;dwell=0.5", `key "dwell" requires an hss key`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse(tt.input)
			require.Error(t, err)
			assert.True(t, diag.IsUser(err), "expected user error, got %T", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := config.Parse("pattern=3;hold")
	require.Error(t, err)

	var ue *diag.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 10, ue.Offset)
	assert.Equal(t, diag.StageConfig, ue.Stage)
}

func TestBooleanWords(t *testing.T) {
	for _, word := range []string{"true", "TRUE", "yes", "1"} {
		cfg, err := config.Parse("pattern=3;hss=3;hold=" + word)
		require.NoError(t, err, word)
		assert.True(t, cfg.Hold, word)
	}
	for _, word := range []string{"false", "No", "0"} {
		cfg, err := config.Parse("pattern=3;hss=3;hold=" + word)
		require.NoError(t, err, word)
		assert.False(t, cfg.Hold, word)
	}
}

func TestSchemaRequiresPattern(t *testing.T) {
	schema := config.Schema()
	assert.Equal(t, []string{"pattern"}, schema["required"])
}
