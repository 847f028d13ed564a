// Package compiler turns a parsed siteswap tree into the time-indexed throw
// matrix of a matrixfmt.Pattern.
//
// Compilation runs in passes over an annotated copy of the tree:
//
//  1. annotate: unroll repeats, assign beats and hands, resolve pass targets,
//     check the average and decide whether the pattern switch-repeats.
//  2. emit: write every throw into the matrix, once per period up to the
//     lookahead bound, mirrored for the second half of a switch-repeat.
//  3. resolve: settle same-hand 2s as holds or throws.
//  4. validate: every hand catches what it throws on every beat.
package compiler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/invariant"
	"github.com/aledsdavies/jugglec/core/matrixfmt"
	"github.com/aledsdavies/jugglec/core/notation"
)

// Config configures compilation. A zero Config is valid.
type Config struct {
	Source    string               // Notation the tree was parsed from, for error snippets
	HandPaths []matrixfmt.PathSpec // Hand movements; enables HandsIndex on throws
	Logger    *zerolog.Logger      // Debug logging (optional)
	Telemetry TelemetryLevel       // Telemetry level (production-safe)
	Debug     DebugLevel           // Debug level (development only)
}

// TelemetryLevel controls telemetry collection (production-safe)
type TelemetryLevel int

const (
	TelemetryOff    TelemetryLevel = iota // Zero overhead (default)
	TelemetryBasic                        // Counts only
	TelemetryTiming                       // Counts + timing per pass
)

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff      DebugLevel = iota // No debug info (default)
	DebugPaths                      // Pass enter/exit tracing
	DebugDetailed                   // Event-level tracing
)

// CompileResult holds the pattern and observability data
type CompileResult struct {
	Pattern     *matrixfmt.Pattern
	CompileTime time.Duration     // Always collected
	Telemetry   *CompileTelemetry // nil if TelemetryOff
	DebugEvents []DebugEvent      // nil if DebugOff
}

// CompileTelemetry holds additional compiler metrics
type CompileTelemetry struct {
	NodeCount     int // Annotated nodes, repeats unrolled
	ThrowCount    int // Throws stored in the matrix
	ResolvedCount int // Same-hand 2s settled by lookahead

	AnnotateTime time.Duration // TelemetryTiming only
	EmitTime     time.Duration
	ResolveTime  time.Duration
	ValidateTime time.Duration
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "enter_annotate", "annotated", "emitted", ...
	Context   string
}

// Compile compiles tree into a pattern.
func Compile(tree *notation.Pattern, config Config) (*matrixfmt.Pattern, error) {
	result, err := CompileWithObservability(tree, config)
	if err != nil {
		return nil, err
	}
	return result.Pattern, nil
}

// CompileWithObservability returns the pattern with telemetry and debug
// events. Broken internal invariants are returned as *diag.InternalError.
func CompileWithObservability(tree *notation.Pattern, config Config) (result *CompileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = diag.FromViolation(diag.StageCompile, invariant.Recover(r))
		}
	}()

	invariant.NotNil(tree, "tree")

	c := &compiler{config: config, logger: zerolog.Nop()}
	if config.Logger != nil {
		c.logger = *config.Logger
	}
	if config.Telemetry >= TelemetryBasic {
		c.telemetry = &CompileTelemetry{}
	}
	if config.Debug >= DebugPaths {
		c.debugEvents = make([]DebugEvent, 0, 16)
	}

	startTime := time.Now()
	pattern, err := c.compile(tree)
	if err != nil {
		c.logger.Debug().Err(err).Msg("compile failed")
		return nil, err
	}

	return &CompileResult{
		Pattern:     pattern,
		CompileTime: time.Since(startTime),
		Telemetry:   c.telemetry,
		DebugEvents: c.debugEvents,
	}, nil
}

type compiler struct {
	config      Config
	logger      zerolog.Logger
	telemetry   *CompileTelemetry
	debugEvents []DebugEvent
}

func (c *compiler) compile(tree *notation.Pattern) (*matrixfmt.Pattern, error) {
	source := c.config.Source
	if source == "" {
		source = tree.String()
	}

	// annotate
	c.recordDebugEvent("enter_annotate", source)
	start := time.Now()
	ann, err := annotate(tree, source, c.trace)
	if err != nil {
		return nil, err
	}
	c.timed(&start, func(t *CompileTelemetry, d time.Duration) { t.AnnotateTime = d; t.NodeCount = ann.nodes })
	c.logger.Debug().
		Int("period", ann.period).
		Int("jugglers", ann.jugglers).
		Int("maxThrow", ann.maxThrow).
		Bool("switchRepeat", ann.switchRepeat).
		Msg("annotated")

	// emit
	l := layout{
		period:  ann.period,
		indexes: ann.maxThrow + ann.period + 1,
	}
	if len(c.config.HandPaths) > 0 {
		l.handPeriods = make([]int, ann.jugglers)
		for j := range l.handPeriods {
			l.handPeriods[j] = c.config.HandPaths[j%len(c.config.HandPaths)].Period()
		}
	}

	m := matrixfmt.NewMatrix(ann.jugglers, l.indexes, ann.maxOccupancy)
	throws := emit(ann.root, false, 0, l)
	if ann.switchRepeat {
		throws = append(throws, emit(ann.root, true, ann.period/2, l)...)
	}
	for _, t := range throws {
		invariant.Invariant(m.At(t.SourceJuggler, t.SourceHand, t.Beat, t.Slot) == nil,
			"two throws emitted into %s", t)
		m.Set(t)
	}
	c.timed(&start, func(t *CompileTelemetry, d time.Duration) { t.EmitTime = d; t.ThrowCount = len(throws) })
	c.recordDebugEvent("emitted", fmt.Sprintf("throws=%d indexes=%d", len(throws), l.indexes))

	// resolve
	resolved := resolve(m, ann.period)
	c.timed(&start, func(t *CompileTelemetry, d time.Duration) { t.ResolveTime = d; t.ResolvedCount = resolved })
	c.recordDebugEvent("resolved", fmt.Sprintf("count=%d", resolved))

	// validate
	if err := checkLandings(m, ann.period); err != nil {
		return nil, err
	}
	c.timed(&start, func(t *CompileTelemetry, d time.Duration) { t.ValidateTime = d })
	c.recordDebugEvent("exit_validate", "")

	symmetries := []matrixfmt.Symmetry{{
		Kind:        matrixfmt.Delay,
		JugglerPerm: matrixfmt.IdentityPerm(ann.jugglers),
		Period:      ann.period,
	}}
	if ann.switchRepeat {
		symmetries = append(symmetries, matrixfmt.Symmetry{
			Kind:        matrixfmt.SwitchDelay,
			JugglerPerm: matrixfmt.IdentityPerm(ann.jugglers),
			Period:      ann.period / 2,
		})
	}

	p := &matrixfmt.Pattern{
		Source:       source,
		NumJugglers:  ann.jugglers,
		NumPaths:     ann.throwSum / ann.period,
		Period:       ann.period,
		MaxThrow:     ann.maxThrow,
		MaxOccupancy: ann.maxOccupancy,
		SwitchRepeat: ann.switchRepeat,
		Matrix:       m,
		Symmetries:   symmetries,
		HandPaths:    c.config.HandPaths,
	}
	c.logger.Debug().
		Str("pattern", p.Source).
		Int("paths", p.NumPaths).
		Int("throws", len(throws)).
		Msg("compiled")
	return p, nil
}

// timed records the time since *start when timing telemetry is enabled and
// resets *start.
func (c *compiler) timed(start *time.Time, record func(*CompileTelemetry, time.Duration)) {
	if c.telemetry == nil {
		return
	}
	d := time.Duration(0)
	if c.config.Telemetry >= TelemetryTiming {
		d = time.Since(*start)
	}
	record(c.telemetry, d)
	*start = time.Now()
}

func (c *compiler) trace(event, context string) {
	if c.config.Debug >= DebugDetailed {
		c.recordDebugEvent(event, context)
	}
}

func (c *compiler) recordDebugEvent(event, context string) {
	if c.config.Debug == DebugOff {
		return
	}
	c.debugEvents = append(c.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		Context:   context,
	})
}
