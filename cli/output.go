package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/aledsdavies/jugglec/core/matrixfmt"
	"github.com/aledsdavies/jugglec/core/matrixfmt/formatter"
	"github.com/aledsdavies/jugglec/runtime/hss"
)

// jsonPattern is the JSON view of a compiled pattern. Only the first period
// of the matrix is written, without zero placeholders.
type jsonPattern struct {
	Source       string         `json:"source"`
	Title        string         `json:"title,omitempty"`
	Jugglers     int            `json:"jugglers"`
	Paths        int            `json:"paths"`
	Period       int            `json:"period"`
	MaxThrow     int            `json:"maxThrow"`
	MaxOccupancy int            `json:"maxOccupancy"`
	SwitchRepeat bool           `json:"switchRepeat"`
	Symmetries   []jsonSymmetry `json:"symmetries"`
	Throws       []jsonThrow    `json:"throws"`
	Dwell        []float64      `json:"dwell,omitempty"`
	BPS          float64        `json:"bps,omitempty"`
	HandPaths    int            `json:"handPaths,omitempty"`
	BodyPaths    int            `json:"bodyPaths,omitempty"`
	Warnings     []string       `json:"warnings,omitempty"`
	Digest       string         `json:"digest"`
}

type jsonSymmetry struct {
	Kind        string `json:"kind"`
	JugglerPerm string `json:"jugglerPerm"`
	Period      int    `json:"period"`
}

type jsonThrow struct {
	Juggler     int    `json:"juggler"`
	Hand        string `json:"hand"`
	Beat        int    `json:"beat"`
	Value       int    `json:"value"`
	DestJuggler int    `json:"destJuggler"`
	DestHand    string `json:"destHand"`
	TargetBeat  int    `json:"targetBeat"`
	Modifier    string `json:"modifier"`
}

func toJSONPattern(p *matrixfmt.Pattern) (*jsonPattern, error) {
	digest, err := p.Digest()
	if err != nil {
		return nil, err
	}

	var throws []*matrixfmt.Throw
	p.Matrix.Each(func(t *matrixfmt.Throw) {
		throws = append(throws, t)
	})
	throws = lo.Filter(throws, func(t *matrixfmt.Throw, _ int) bool {
		return t.Value != 0 && t.Beat < p.Period
	})

	return &jsonPattern{
		Source:       p.Source,
		Title:        p.Title,
		Jugglers:     p.NumJugglers,
		Paths:        p.NumPaths,
		Period:       p.Period,
		MaxThrow:     p.MaxThrow,
		MaxOccupancy: p.MaxOccupancy,
		SwitchRepeat: p.SwitchRepeat,
		Symmetries: lo.Map(p.Symmetries, func(s matrixfmt.Symmetry, _ int) jsonSymmetry {
			return jsonSymmetry{Kind: s.Kind.String(), JugglerPerm: s.JugglerPerm, Period: s.Period}
		}),
		Throws: lo.Map(throws, func(t *matrixfmt.Throw, _ int) jsonThrow {
			return jsonThrow{
				Juggler:     t.SourceJuggler + 1,
				Hand:        t.SourceHand.String(),
				Beat:        t.Beat,
				Value:       t.Value,
				DestJuggler: t.DestJuggler + 1,
				DestHand:    t.DestHand.String(),
				TargetBeat:  t.TargetBeat,
				Modifier:    t.Mod.String(),
			}
		}),
		Dwell:     p.Dwell,
		BPS:       p.BPS,
		HandPaths: len(p.HandPaths),
		BodyPaths: len(p.BodyPaths),
		Warnings:  p.Warnings,
		Digest:    digest,
	}, nil
}

// writePattern renders p in format.
func writePattern(w io.Writer, p *matrixfmt.Pattern, format string, useColor bool) error {
	switch format {
	case "ladder":
		formatter.FormatLadder(w, p, useColor)
		return nil
	case "json":
		view, err := toJSONPattern(p)
		if err != nil {
			return err
		}
		return writeJSON(w, view)
	case "cbor":
		_, err := matrixfmt.Write(w, p)
		return err
	default:
		_, err := fmt.Fprint(w, formatter.Format(p))
		return err
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// jsonHSS is the JSON view of a hand siteswap conversion.
type jsonHSS struct {
	Pattern  string           `json:"pattern"`
	Period   int              `json:"period"`
	Hands    int              `json:"hands"`
	Jugglers int              `json:"jugglers"`
	Dwell    []float64        `json:"dwell"`
	HandMap  []jsonAssignment `json:"handMap"`
}

type jsonAssignment struct {
	Hand    int    `json:"hand"`
	Juggler int    `json:"juggler"`
	Side    string `json:"side"`
}

// writeHSS renders a conversion as text or JSON.
func writeHSS(w io.Writer, r *hss.Result, format string) error {
	if format == "json" {
		return writeJSON(w, jsonHSS{
			Pattern:  r.Pattern,
			Period:   r.Period,
			Hands:    r.NumHands,
			Jugglers: r.NumJugglers,
			Dwell:    r.Dwell,
			HandMap: lo.Map(r.HandMap, func(a hss.HandAssignment, _ int) jsonAssignment {
				return jsonAssignment{Hand: a.Hand, Juggler: a.Juggler + 1, Side: sideName(a.Side)}
			}),
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "pattern: %s\n", r.Pattern)
	fmt.Fprintf(&b, "period: %d  hands: %d  jugglers: %d\n", r.Period, r.NumHands, r.NumJugglers)
	for _, a := range r.HandMap {
		fmt.Fprintf(&b, "hand %d: juggler %d %s\n", a.Hand, a.Juggler+1, sideName(a.Side))
	}
	dwell := lo.Map(r.Dwell, func(d float64, _ int) string { return fmt.Sprintf("%.2f", d) })
	fmt.Fprintf(&b, "dwell: %s\n", strings.Join(dwell, " "))
	_, err := io.WriteString(w, b.String())
	return err
}

func sideName(h matrixfmt.Hand) string {
	if h == matrixfmt.Left {
		return "left"
	}
	return "right"
}
