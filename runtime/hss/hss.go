// Package hss converts a hand siteswap (an object pattern plus a separate
// hand pattern saying which hand throws on each beat) into an equivalent
// synchronous siteswap the main parser understands.
package hss

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/invariant"
	"github.com/aledsdavies/jugglec/core/matrixfmt"
	"github.com/aledsdavies/jugglec/core/notation"
	"github.com/aledsdavies/jugglec/runtime/validation"
)

// Options configures a conversion. A zero Options is valid.
type Options struct {
	HandSpec string          // "(l,r)(l,r)..."; empty for the default assignment
	Hold     bool            // mark throws whose value equals the hand's as holds
	DwellMax bool            // stretch dwell times up to the next throw
	Dwell    float64         // base dwell in beats; 0 means matrixfmt.DefaultDwell
	Logger   *zerolog.Logger // Debug logging (optional)
}

// Result is a converted hand siteswap.
type Result struct {
	Pattern     string    // synthesized siteswap
	Dwell       []float64 // per beat of Period
	Period      int       // lcm of the object period and the hand orbit period
	NumHands    int
	NumJugglers int
	HandMap     []HandAssignment // indexed by hand id - 1
	BeatHands   []int            // hand id throwing on each beat, 0 for none
}

// Convert validates objectPattern and handPattern and synthesizes the
// equivalent siteswap.
func Convert(objectPattern, handPattern string, opts Options) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = diag.FromViolation(diag.StageHSS, invariant.Recover(r))
		}
	}()

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	objects, err := parseObjects(objectPattern)
	if err != nil {
		return nil, err
	}
	hands, handOffsets, err := parseHands(handPattern)
	if err != nil {
		return nil, err
	}

	values := make([][]int, len(objects))
	for i, b := range objects {
		values[i] = b.values()
	}
	if _, err := validation.CheckAverage(values); err != nil {
		return nil, diag.Userf(diag.StageHSS, "object pattern: %v", err)
	}
	if err := validation.CheckPermutation(values); err != nil {
		return nil, permutationError(objectPattern, "object pattern", err, func(beat int) int { return objects[beat].offset })
	}

	handBeats := make([][]int, len(hands))
	for i, h := range hands {
		handBeats[i] = []int{h}
	}
	if _, err := validation.CheckAverage(handBeats); err != nil {
		return nil, diag.Userf(diag.StageHSS, "hand pattern: %v", err)
	}
	orbits, err := validation.Orbits(hands)
	if err != nil {
		return nil, permutationError(handPattern, "hand pattern", err, func(beat int) int { return handOffsets[beat] })
	}
	orbitPeriod, err := validation.OrbitPeriod(orbits)
	if err != nil {
		return nil, diag.Userf(diag.StageHSS, "hand pattern: %v", err)
	}

	period := validation.LCM(len(objects), orbitPeriod)
	invariant.Invariant(period%len(hands) == 0, "hand orbit period %d is not a multiple of hand period %d", orbitPeriod, len(hands))

	s := &schedule{
		period:  period,
		objects: make([][]int, period),
		hands:   make([]int, period),
		ids:     make([]int, period),
	}
	for b := 0; b < period; b++ {
		s.objects[b] = values[b%len(values)]
		s.hands[b] = hands[b%len(hands)]
	}

	numHands := s.assignHands()
	for b := 0; b < period; b++ {
		if s.ids[b] != 0 {
			continue
		}
		for _, t := range objects[b%len(objects)].throws {
			if t.value != 0 {
				return nil, diag.UserAt(diag.StageHSS, objectPattern, t.offset,
					"beat %d throws %s but the hand pattern has no hand there", b+1, notation.ValueChar(t.value))
			}
		}
	}

	var handMap []HandAssignment
	var jugglers int
	if strings.TrimSpace(opts.HandSpec) == "" {
		handMap, jugglers = defaultHandSpec(numHands)
	} else {
		handMap, jugglers, err = parseHandSpec(opts.HandSpec, numHands)
		if err != nil {
			return nil, err
		}
	}
	if jugglers > maxJugglers {
		return nil, diag.Userf(diag.StageHandspec, "%d jugglers, at most %d are supported", jugglers, maxJugglers)
	}

	base := opts.Dwell
	if base <= 0 {
		base = matrixfmt.DefaultDwell
	}

	result = &Result{
		Pattern:     s.synthesize(objects, handMap, jugglers, opts.Hold),
		Dwell:       s.dwells(base, opts.DwellMax),
		Period:      period,
		NumHands:    numHands,
		NumJugglers: jugglers,
		HandMap:     handMap,
		BeatHands:   s.ids,
	}

	logger.Debug().
		Str("pass", "hss").
		Int("period", period).
		Int("hands", numHands).
		Int("jugglers", jugglers).
		Str("pattern", result.Pattern).
		Msg("converted hand siteswap")
	return result, nil
}

func permutationError(input, what string, err error, offset func(beat int) int) error {
	var pe *validation.PermutationError
	if errors.As(err, &pe) {
		return diag.UserAt(diag.StageHSS, input, offset(pe.Beat), "%s: %s", what, pe.Message)
	}
	return diag.Userf(diag.StageHSS, "%s: %v", what, err)
}

// assignHands numbers hands in order of first use and propagates each id
// around its orbit. It returns the number of hands.
func (s *schedule) assignHands() int {
	n := 0
	for start := range s.ids {
		if s.ids[start] != 0 || s.hands[start] == 0 {
			continue
		}
		n++
		for b := start; s.ids[b] == 0; b = (b + s.hands[b]) % s.period {
			s.ids[b] = n
		}
	}
	return n
}

// synthesize writes one "(left,right)!" beat per juggler per beat, with
// "0" for the idle hand. Several jugglers are written as a passing group.
func (s *schedule) synthesize(objects []objectBeat, handMap []HandAssignment, jugglers int, hold bool) string {
	seqs := make([]string, jugglers)
	for j := range seqs {
		var b strings.Builder
		for beat := 0; beat < s.period; beat++ {
			left, right := "0", "0"
			if id := s.ids[beat]; id != 0 && handMap[id-1].Juggler == j {
				text := s.throwText(objects[beat%len(objects)], beat, handMap, hold)
				if handMap[id-1].Side == matrixfmt.Left {
					left = text
				} else {
					right = text
				}
			}
			fmt.Fprintf(&b, "(%s,%s)!", left, right)
		}
		seqs[j] = b.String()
	}

	if jugglers == 1 {
		return seqs[0]
	}
	return "<" + strings.Join(seqs, "|") + ">"
}

func (s *schedule) throwText(beat objectBeat, at int, handMap []HandAssignment, hold bool) string {
	src := handMap[s.ids[at]-1]

	parts := make([]string, len(beat.throws))
	for i, t := range beat.throws {
		text := notation.ValueChar(t.value)
		if t.value == 0 {
			parts[i] = text
			continue
		}

		destID := s.ids[(at+t.value)%s.period]
		invariant.Invariant(destID != 0, "object thrown on beat %d lands where no hand is available", at)
		dest := handMap[destID-1]

		side := src.Side
		if t.value%2 == 1 {
			side = side.Opposite()
		}
		if dest.Side != side {
			text += "x"
		}
		if dest.Juggler != src.Juggler {
			text += fmt.Sprintf("p%d", dest.Juggler+1)
		}
		switch {
		case t.bounce != "":
			text += t.bounce
		case hold && t.value == s.hands[at]:
			text += "H"
		}
		parts[i] = text
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, "") + "]"
}
