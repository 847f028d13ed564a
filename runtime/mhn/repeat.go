package mhn

import (
	"strconv"
	"strings"

	"github.com/aledsdavies/jugglec/core/diag"
)

const (
	// maxRepeats bounds a single repeat count.
	maxRepeats = 1000
	// maxExpandedLen bounds the expanded string; nested counts multiply.
	maxExpandedLen = 1 << 16
)

// expandRepeats rewrites every "(...)^N" as N copies of its contents,
// innermost first.
func expandRepeats(s string, stage diag.Stage) (string, error) {
	for {
		caret := strings.IndexByte(s, '^')
		if caret < 0 {
			return s, nil
		}

		end := caret + 1
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		if end == caret+1 {
			return "", diag.UserAt(stage, s, caret, "expected a repeat count after '^'")
		}
		n, err := strconv.Atoi(s[caret+1 : end])
		if err != nil || n > maxRepeats {
			return "", diag.UserAt(stage, s, caret+1, "repeat count %s is too large", s[caret+1:end]).
				WithSuggestion("at most %d repeats are allowed", maxRepeats)
		}

		if caret == 0 || s[caret-1] != ')' {
			return "", diag.UserAt(stage, s, caret, "'^' must follow a parenthesised group")
		}
		open, depth := -1, 0
		for k := caret - 1; k >= 0; k-- {
			switch s[k] {
			case ')':
				depth++
			case '(':
				depth--
			}
			if depth == 0 {
				open = k
				break
			}
		}
		if open < 0 {
			return "", diag.UserAt(stage, s, caret-1, "unmatched ')' before '^'")
		}

		body := s[open+1 : caret-1]
		if len(s)-(end-open)+n*len(body) > maxExpandedLen {
			return "", diag.UserAt(stage, s, open, "repeats expand to more than %d characters", maxExpandedLen).
				WithSuggestion("lower the repeat counts of nested groups")
		}
		s = s[:open] + strings.Repeat(body, n) + s[end:]
	}
}
