// Package config parses the semicolon-delimited key=value pattern
// configuration accepted by the compiler front end:
//
//	pattern=3;hss=2;dwell=0.4;title=cascade
//
// An input without '=' is shorthand for pattern=<input>. Keys are
// case-insensitive. Values are validated against a JSON schema before they are
// converted; unknown keys become warnings with a suggested correction.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aledsdavies/jugglec/core/diag"
)

// Recognized keys.
const (
	KeyPattern  = "pattern"
	KeyHSS      = "hss"
	KeyHandspec = "handspec"
	KeyHold     = "hold"
	KeyDwellMax = "dwellmax"
	KeyDwell    = "dwell"
	KeyBPS      = "bps"
	KeyHands    = "hands"
	KeyBody     = "body"
	KeyTitle    = "title"
)

// knownKeys are consumed by the compiler.
var knownKeys = []string{
	KeyPattern, KeyHSS, KeyHandspec, KeyHold, KeyDwellMax,
	KeyDwell, KeyBPS, KeyHands, KeyBody,
}

// passthroughKeys are accepted and handed to layout and rendering untouched.
var passthroughKeys = []string{
	"prop", KeyTitle, "colors", "gravity", "propdiam", "bouncefrac", "squeezebeats",
}

// hssOnlyKeys are meaningless without an hss key.
var hssOnlyKeys = []string{KeyHandspec, KeyHold, KeyDwellMax, KeyDwell}

// Config is a parsed pattern configuration.
type Config struct {
	Pattern  string
	HSS      string
	Handspec string
	Hold     bool
	DwellMax bool
	Dwell    float64 // 0 when unset
	BPS      float64 // 0 when unset
	Hands    string
	Body     string

	// Passthrough holds the values of keys consumed outside the compiler,
	// keyed by lowercased name.
	Passthrough map[string]string

	// Warnings lists non-fatal problems such as unknown keys.
	Warnings []string

	set map[string]bool
}

// Has reports whether key was present in the input.
func (c *Config) Has(key string) bool {
	return c.set[strings.ToLower(key)]
}

// Title returns the passthrough title, if any.
func (c *Config) Title() string {
	return c.Passthrough[KeyTitle]
}

// Parse parses a configuration string.
func Parse(input string) (*Config, error) {
	raw, order, warnings, err := split(input)
	if err != nil {
		return nil, err
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	cfg := &Config{
		DwellMax:    true,
		Passthrough: make(map[string]string),
		Warnings:    warnings,
		set:         make(map[string]bool),
	}

	for _, key := range order {
		value := raw[key]
		cfg.set[key] = true

		switch key {
		case KeyPattern:
			cfg.Pattern = value
		case KeyHSS:
			cfg.HSS = value
		case KeyHandspec:
			cfg.Handspec = value
		case KeyHold:
			cfg.Hold = parseBool(value)
		case KeyDwellMax:
			cfg.DwellMax = parseBool(value)
		case KeyDwell:
			cfg.Dwell, _ = strconv.ParseFloat(value, 64)
		case KeyBPS:
			cfg.BPS, _ = strconv.ParseFloat(value, 64)
		case KeyHands:
			cfg.Hands = value
		case KeyBody:
			cfg.Body = value
		default:
			if contains(passthroughKeys, key) {
				cfg.Passthrough[key] = value
				continue
			}
			cfg.Warnings = append(cfg.Warnings, unknownKeyWarning(key))
		}
	}

	if !cfg.Has(KeyHSS) {
		for _, key := range hssOnlyKeys {
			if cfg.Has(key) {
				return nil, diag.Userf(diag.StageConfig, "key %q requires an hss key", key).
					WithSuggestion("add hss=<hand siteswap> or remove %s", key)
			}
		}
	}

	return cfg, nil
}

// split breaks input into lowercased keys and trimmed values, preserving
// first-appearance order. A repeated key keeps its last value.
func split(input string) (map[string]string, []string, []string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, nil, diag.Userf(diag.StageConfig, "empty configuration")
	}

	values := make(map[string]string)
	var order, warnings []string

	if !strings.Contains(input, "=") {
		values[KeyPattern] = input
		return values, []string{KeyPattern}, nil, nil
	}

	offset := 0
	for _, segment := range strings.Split(input, ";") {
		start := offset
		offset += len(segment) + 1

		if strings.TrimSpace(segment) == "" {
			continue
		}
		eq := strings.Index(segment, "=")
		if eq < 0 {
			return nil, nil, nil, diag.UserAt(diag.StageConfig, input, start,
				"expected key=value, got %q", strings.TrimSpace(segment))
		}
		key := strings.ToLower(strings.TrimSpace(segment[:eq]))
		if key == "" {
			return nil, nil, nil, diag.UserAt(diag.StageConfig, input, start, "missing key before '='")
		}
		value := strings.TrimSpace(segment[eq+1:])

		if _, seen := values[key]; seen {
			warnings = append(warnings, fmt.Sprintf("key %q given more than once; using the last value", key))
		} else {
			order = append(order, key)
		}
		values[key] = value
	}

	return values, order, warnings, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func unknownKeyWarning(key string) string {
	if match := findClosestMatch(key, append(append([]string{}, knownKeys...), passthroughKeys...)); match != "" {
		return fmt.Sprintf("unknown key %q (did you mean %q?)", key, match)
	}
	return fmt.Sprintf("unknown key %q", key)
}

// findClosestMatch finds the closest known key. Subsequence matches are
// ranked first; otherwise a key within edit distance 2 is accepted.
func findClosestMatch(target string, candidates []string) string {
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", 3
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(target, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
