package hss

import (
	"math"
	"sort"
)

const (
	dwellMargin = 0.2 // kept between a catch and the neighbouring throw
	dwellStep   = 0.1 // collision-removal decrement
	epsilon     = 1e-9
)

// schedule is the cyclically extended pattern the dwell and synthesis steps
// work on.
type schedule struct {
	period  int
	objects [][]int // values thrown on each beat
	hands   []int   // hand pattern value on each beat
	ids     []int   // hand id throwing on each beat, 0 for none
}

// dwells returns the dwell time of every beat: the time between the catch
// and the throw made on that beat.
func (s *schedule) dwells(base float64, dwellMax bool) []float64 {
	// gap[b] is how long ago the hand throwing on b last threw.
	gap := make([]int, s.period)
	for p, id := range s.ids {
		if id != 0 {
			gap[(p+s.hands[p])%s.period] = s.hands[p]
		}
	}

	out := make([]float64, s.period)
	for b := range out {
		out[b] = base
		if s.ids[b] == 0 {
			continue
		}
		if dwellMax {
			out[b] = float64(gap[b]) - dwellMargin
			if in := s.shortestArrival(b); in > 0 && out[b] > float64(in)-dwellMargin {
				out[b] = float64(in) - dwellMargin
			}
		}
		for out[b] >= float64(gap[b])-epsilon && out[b] > dwellStep+epsilon {
			out[b] = round(out[b] - dwellStep)
		}
	}

	s.separateCatches(out)
	return out
}

// shortestArrival returns the smallest nonzero value landing on beat, or 0.
func (s *schedule) shortestArrival(beat int) int {
	shortest := 0
	for q, values := range s.objects {
		for _, v := range values {
			if v > 0 && (q+v)%s.period == beat && (shortest == 0 || v < shortest) {
				shortest = v
			}
		}
	}
	return shortest
}

// separateCatches nudges dwell times until no two catches of one hand
// happen at the same instant modulo the period.
func (s *schedule) separateCatches(dwell []float64) {
	type catch struct {
		beat int
		at   float64
	}
	for iter := 0; iter < s.period*10; iter++ {
		byHand := make(map[int][]catch)
		for b, id := range s.ids {
			if id == 0 {
				continue
			}
			at := math.Mod(float64(b)-dwell[b], float64(s.period))
			if at < 0 {
				at += float64(s.period)
			}
			byHand[id] = append(byHand[id], catch{beat: b, at: at})
		}

		moved := false
		for _, catches := range byHand {
			sort.Slice(catches, func(i, j int) bool { return catches[i].at < catches[j].at })
			for i := 1; i < len(catches); i++ {
				if catches[i].at-catches[i-1].at < epsilon && dwell[catches[i].beat] > dwellStep+epsilon {
					dwell[catches[i].beat] = round(dwell[catches[i].beat] - dwellStep)
					moved = true
				}
			}
		}
		if !moved {
			return
		}
	}
}

func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
