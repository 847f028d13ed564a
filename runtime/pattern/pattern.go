// Package pattern compiles a complete pattern configuration string: it runs
// the hand siteswap converter when an hss key is present, parses and
// compiles the siteswap, and attaches dwell, timing and movement paths.
package pattern

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/aledsdavies/jugglec/core/config"
	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/matrixfmt"
	"github.com/aledsdavies/jugglec/runtime/compiler"
	"github.com/aledsdavies/jugglec/runtime/hss"
	"github.com/aledsdavies/jugglec/runtime/mhn"
	"github.com/aledsdavies/jugglec/runtime/parser"
)

// Option configures loading.
type Option func(*options)

type options struct {
	logger    *zerolog.Logger
	telemetry compiler.TelemetryLevel
	debug     compiler.DebugLevel
}

// WithLogger enables debug logging in every stage.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithTelemetry sets the parser and compiler telemetry level.
func WithTelemetry(level compiler.TelemetryLevel) Option {
	return func(o *options) {
		o.telemetry = level
	}
}

// WithDebug sets the parser and compiler debug level.
func WithDebug(level compiler.DebugLevel) Option {
	return func(o *options) {
		o.debug = level
	}
}

// parserOpts maps the shared levels onto parser options.
func (o *options) parserOpts() []parser.ParserOpt {
	var opts []parser.ParserOpt
	if o.logger != nil {
		opts = append(opts, parser.WithLogger(*o.logger))
	}
	switch o.telemetry {
	case compiler.TelemetryBasic:
		opts = append(opts, parser.WithTelemetryBasic())
	case compiler.TelemetryTiming:
		opts = append(opts, parser.WithTelemetryTiming())
	}
	switch o.debug {
	case compiler.DebugPaths:
		opts = append(opts, parser.WithDebugPaths())
	case compiler.DebugDetailed:
		opts = append(opts, parser.WithDebugDetailed())
	}
	return opts
}

// Loaded is a compiled configuration with the intermediate results.
type Loaded struct {
	Pattern   *matrixfmt.Pattern
	Config    *config.Config
	HSS       *hss.Result // nil without an hss key
	Parse     *parser.ParseTree
	Compile   *compiler.CompileResult
	TotalTime time.Duration
}

// FromConfig compiles a configuration string such as "pattern=531" or the
// shorthand "531".
func FromConfig(cfg string, opts ...Option) (*matrixfmt.Pattern, error) {
	loaded, err := Load(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return loaded.Pattern, nil
}

// Load compiles a configuration string and keeps the intermediate results.
func Load(cfg string, opts ...Option) (*Loaded, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := zerolog.Nop()
	if o.logger != nil {
		logger = *o.logger
	}

	start := time.Now()
	c, err := config.Parse(cfg)
	if err != nil {
		return nil, err
	}
	loaded := &Loaded{Config: c}

	source := c.Pattern
	if c.Has(config.KeyHSS) {
		loaded.HSS, err = hss.Convert(c.Pattern, c.HSS, hss.Options{
			HandSpec: c.Handspec,
			Hold:     c.Hold,
			DwellMax: c.DwellMax,
			Dwell:    c.Dwell,
			Logger:   o.logger,
		})
		if err != nil {
			return nil, err
		}
		source = loaded.HSS.Pattern
	}

	var handPaths, bodyPaths []matrixfmt.PathSpec
	if c.Has(config.KeyHands) {
		if handPaths, err = mhn.ParseHands(c.Hands); err != nil {
			return nil, err
		}
	}
	if c.Has(config.KeyBody) {
		if bodyPaths, err = mhn.ParseBody(c.Body); err != nil {
			return nil, err
		}
	}

	tree, err := parser.Parse(source, o.parserOpts()...)
	if err != nil {
		if loaded.HSS != nil {
			return nil, diag.Internalf(diag.StageHSS, "synthesized pattern %q does not parse: %v", source, err)
		}
		return nil, err
	}

	loaded.Parse = tree

	loaded.Compile, err = compiler.CompileWithObservability(tree.Pattern, compiler.Config{
		Source:    source,
		HandPaths: handPaths,
		Logger:    o.logger,
		Telemetry: o.telemetry,
		Debug:     o.debug,
	})
	if err != nil {
		return nil, err
	}

	p := loaded.Compile.Pattern
	p.HandPaths, p.Warnings = fitPaths(handPaths, p.NumJugglers, config.KeyHands, p.Warnings)
	p.BodyPaths, p.Warnings = fitPaths(bodyPaths, p.NumJugglers, config.KeyBody, p.Warnings)
	p.BPS = c.BPS
	p.Title = c.Title()
	p.Warnings = append(p.Warnings, c.Warnings...)
	if loaded.HSS != nil {
		p.Dwell = loaded.HSS.Dwell
	}

	loaded.Pattern = p
	loaded.TotalTime = time.Since(start)
	logger.Debug().
		Str("pattern", p.Source).
		Int("jugglers", p.NumJugglers).
		Int("paths", p.NumPaths).
		Dur("took", loaded.TotalTime).
		Msg("loaded pattern")
	return loaded, nil
}

// fitPaths reuses path sections cyclically so there is one per juggler.
func fitPaths(paths []matrixfmt.PathSpec, jugglers int, key string, warnings []string) ([]matrixfmt.PathSpec, []string) {
	if len(paths) == 0 || len(paths) == jugglers {
		return paths, warnings
	}
	warnings = append(warnings, fmt.Sprintf("%s lists %d jugglers but the pattern has %d; sections are reused in order",
		key, len(paths), jugglers))
	return lo.Times(jugglers, func(j int) matrixfmt.PathSpec {
		spec := paths[j%len(paths)]
		spec.Juggler = j
		return spec
	}), warnings
}
