// Package validation checks the arithmetic properties a throw sequence must
// have before it can be juggled: the average test, the landing permutation
// test and the decomposition of a single-throw sequence into orbits.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// AverageError reports a sequence whose throw sum is not a multiple of its
// length.
type AverageError struct {
	Sum    int
	Period int
}

func (e *AverageError) Error() string {
	return fmt.Sprintf("bad average: throw sum %d is not a multiple of period %d", e.Sum, e.Period)
}

// PermutationError reports the first beat whose landing count differs from
// the number of throws made there.
type PermutationError struct {
	Beat     int // 0-based beat within the period
	Landing  int // throws landing on Beat
	Throwing int // throws made on Beat
	Message  string
}

func (e *PermutationError) Error() string {
	return e.Message
}

// CheckAverage returns the number of objects in a sequence of beats, where
// beats[i] lists the values thrown on beat i.
func CheckAverage(beats [][]int) (int, error) {
	period := len(beats)
	if period == 0 {
		return 0, fmt.Errorf("empty pattern")
	}
	sum := 0
	for _, beat := range beats {
		for _, v := range beat {
			sum += v
		}
	}
	if sum%period != 0 {
		return 0, &AverageError{Sum: sum, Period: period}
	}
	return sum / period, nil
}

// CheckPermutation verifies that, for every beat, the number of throws
// landing there (value + beat mod period) equals the number of throws made
// there. Zero throws land on their own beat.
func CheckPermutation(beats [][]int) error {
	period := len(beats)
	if period == 0 {
		return fmt.Errorf("empty pattern")
	}

	landing := make([]int, period)
	for i, beat := range beats {
		for _, v := range beat {
			landing[(i+v)%period]++
		}
	}

	for i, beat := range beats {
		if landing[i] != len(beat) {
			return &PermutationError{
				Beat:     i,
				Landing:  landing[i],
				Throwing: len(beat),
				Message: fmt.Sprintf("collision at beat %d: %d %s but %d %s",
					i+1, landing[i], plural(landing[i], "throw lands", "throws land"),
					len(beat), plural(len(beat), "is thrown", "are thrown")),
			}
		}
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Orbit is one cycle of the beat map i -> (i + values[i]) mod period.
type Orbit struct {
	Beats []int // beats in visiting order, starting from the smallest
	Sum   int   // sum of values along the cycle
}

func (o Orbit) String() string {
	parts := make([]string, len(o.Beats))
	for i, b := range o.Beats {
		parts[i] = fmt.Sprint(b + 1)
	}
	return "(" + strings.Join(parts, " -> ") + ")"
}

// Orbits decomposes a single-throw sequence into the cycles of its beat map.
// It fails with a PermutationError unless the map is a bijection. Orbits are
// returned ordered by their smallest beat.
func Orbits(values []int) ([]Orbit, error) {
	beats := make([][]int, len(values))
	for i, v := range values {
		beats[i] = []int{v}
	}
	if err := CheckPermutation(beats); err != nil {
		return nil, err
	}

	period := len(values)
	visited := make([]bool, period)
	var orbits []Orbit

	for start := 0; start < period; start++ {
		if visited[start] {
			continue
		}
		var orbit Orbit
		for b := start; !visited[b]; b = (b + values[b]) % period {
			visited[b] = true
			orbit.Beats = append(orbit.Beats, b)
			orbit.Sum += values[b]
		}
		orbits = append(orbits, orbit)
	}

	sort.Slice(orbits, func(a, b int) bool {
		return orbits[a].Beats[0] < orbits[b].Beats[0]
	})
	return orbits, nil
}

// OrbitError reports orbits whose value sums disagree.
type OrbitError struct {
	Orbits  []Orbit
	Message string
}

func (e *OrbitError) Error() string {
	return e.Message
}

// OrbitPeriod returns the common value sum of the non-zero orbits: the number
// of beats after which every hand has returned to its starting beat. All
// non-zero orbit sums must be equal.
func OrbitPeriod(orbits []Orbit) (int, error) {
	period := 0
	for _, o := range orbits {
		if o.Sum == 0 {
			continue
		}
		if period == 0 {
			period = o.Sum
			continue
		}
		if o.Sum != period {
			return 0, &OrbitError{
				Orbits: orbits,
				Message: fmt.Sprintf("hand orbits have different lengths: %s sums to %d, %s sums to %d",
					firstNonZero(orbits), period, o, o.Sum),
			}
		}
	}
	if period == 0 {
		return 0, fmt.Errorf("no hands: every hand throw is 0")
	}
	return period, nil
}

func firstNonZero(orbits []Orbit) Orbit {
	for _, o := range orbits {
		if o.Sum != 0 {
			return o
		}
	}
	return Orbit{}
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// LCM returns the least common multiple of a and b (0 if either is 0).
func LCM(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return a / GCD(a, b) * b
}
