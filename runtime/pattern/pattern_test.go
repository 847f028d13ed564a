package pattern

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/matrixfmt"
	"github.com/aledsdavies/jugglec/runtime/compiler"
)

func TestFromConfigShorthand(t *testing.T) {
	p, err := FromConfig("531")
	require.NoError(t, err)

	assert.Equal(t, "531", p.Source)
	assert.Equal(t, 3, p.NumPaths)
	assert.Equal(t, 6, p.Period)
	assert.Nil(t, p.Dwell)
	assert.InDelta(t, matrixfmt.DefaultDwell, p.DwellAt(4), 1e-9)
}

func TestFromConfigHSS(t *testing.T) {
	// Given: an object pattern with a two-hand hand siteswap
	p, err := FromConfig("pattern=3;hss=2;dwellmax=false;dwell=0.4")
	require.NoError(t, err)

	// Then: the synthesized pattern is compiled with its dwell times
	assert.Equal(t, "(0,3)!(3,0)!", p.Source)
	assert.Equal(t, 3, p.NumPaths)
	assert.Equal(t, []float64{0.4, 0.4}, p.Dwell)

	direct, err := FromConfig("3")
	require.NoError(t, err)
	want, err := direct.Digest()
	require.NoError(t, err)
	got, err := p.Digest()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadKeepsIntermediateResults(t *testing.T) {
	loaded, err := Load("pattern=3;hss=2;handspec=(1,2)", WithTelemetry(compiler.TelemetryBasic))
	require.NoError(t, err)

	require.NotNil(t, loaded.HSS)
	assert.Equal(t, "(3,0)!(0,3)!", loaded.HSS.Pattern)
	assert.Equal(t, "(1,2)", loaded.Config.Handspec)
	require.NotNil(t, loaded.Compile.Telemetry)
	assert.Positive(t, loaded.Compile.Telemetry.ThrowCount)
	assert.Same(t, loaded.Pattern, loaded.Compile.Pattern)
}

func TestLoadForwardsLevelsToParser(t *testing.T) {
	// Given: telemetry and debug levels requested once
	loaded, err := Load("531", WithTelemetry(compiler.TelemetryTiming), WithDebug(compiler.DebugPaths))
	require.NoError(t, err)

	// Then: both the parser and the compiler report them
	require.NotNil(t, loaded.Parse)
	require.NotNil(t, loaded.Parse.Telemetry)
	assert.Positive(t, loaded.Parse.Telemetry.TokenCount)
	assert.NotEmpty(t, loaded.Parse.DebugEvents)
	require.NotNil(t, loaded.Compile.Telemetry)
	assert.NotEmpty(t, loaded.Compile.DebugEvents)

	plain, err := Load("531")
	require.NoError(t, err)
	assert.Nil(t, plain.Parse.Telemetry)
	assert.Nil(t, plain.Parse.DebugEvents)
}

func TestFromConfigPaths(t *testing.T) {
	// Given: a two juggler pattern with one hand section and two body sections
	p, err := FromConfig("pattern=<3p|3p>;hands=(10)(20).(30)(40).;body=(0,0)|(100,0)")
	require.NoError(t, err)

	// Then: the single hand section is reused for both jugglers
	require.Len(t, p.HandPaths, 2)
	assert.Equal(t, 0, p.HandPaths[0].Juggler)
	assert.Equal(t, 1, p.HandPaths[1].Juggler)
	assert.Equal(t, p.HandPaths[0].Beats, p.HandPaths[1].Beats)
	require.Len(t, p.BodyPaths, 2)
	assert.Contains(t, p.Warnings, "hands lists 1 jugglers but the pattern has 2; sections are reused in order")

	throws := p.Matrix.Throws(1, matrixfmt.Left, 1)
	require.Len(t, throws, 1)
	assert.Equal(t, 1, throws[0].HandsIndex)
}

func TestFromConfigPassthrough(t *testing.T) {
	p, err := FromConfig("pattern=441;bps=5;title=Box;prop=ball;tilte=x")
	require.NoError(t, err)

	assert.Equal(t, 5.0, p.BPS)
	assert.Equal(t, "Box", p.Title)
	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0], `unknown key "tilte"`)
}

func TestFromConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		stage   diag.Stage
		wantMsg string
	}{
		{"config", "pattern=3;dwell=fast", diag.StageConfig, "invalid value"},
		{"parse", "pattern=3)", diag.StageParse, ""},
		{"compile", "pattern=34", diag.StageCompile, "bad average"},
		{"hss", "pattern=543;hss=2", diag.StageHSS, "collision"},
		{"handspec", "pattern=3;hss=2;handspec=(1,1)", diag.StageHandspec, "assigned twice"},
		{"hands", "pattern=3;hands=(10)", diag.StageHands, "too few coordinates"},
		{"body", "pattern=3;body=(1)q", diag.StageBody, "unexpected character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig(tt.input)
			require.Error(t, err)

			var uerr *diag.UserError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, tt.stage, uerr.Stage)
			assert.Contains(t, uerr.Message, tt.wantMsg)
		})
	}
}

func TestLoadLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := Load("pattern=3;hss=2", WithLogger(logger))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"message":"converted hand siteswap"`)
	assert.Contains(t, buf.String(), `"message":"compiled"`)
	assert.Contains(t, buf.String(), `"message":"loaded pattern"`)
}
