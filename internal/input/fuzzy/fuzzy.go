package fuzzy

import (
	"slices"
	"strings"
	"unicode"
)

// Result is one matching name.
type Result struct {
	Name  string
	Score int

	// Matches holds the rune indices of the matched characters.
	Matches []int
}

// Match returns the names matching query, best first. Equal scores are
// ordered by name. An empty query matches every name with score zero.
// A limit of zero or less returns all matches.
func Match(query string, names []string, limit int) []Result {
	q := []rune(strings.ToLower(strings.TrimSpace(query)))

	results := make([]Result, 0, len(names))
	for _, name := range names {
		if len(q) == 0 {
			results = append(results, Result{Name: name})
			continue
		}
		if score, matches := matchName(q, name); matches != nil {
			results = append(results, Result{Name: name, Score: score, Matches: matches})
		}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return strings.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// matchName tries a word-start-first scan and a plain left-to-right scan
// and keeps the better.
func matchName(q []rune, name string) (int, []int) {
	orig := []rune(name)
	lower := []rune(strings.ToLower(name))

	best, bestMatches := 0, []int(nil)
	for _, preferStarts := range []bool{true, false} {
		m := scan(q, orig, lower, preferStarts)
		if m == nil {
			continue
		}
		if s := score(q, orig, lower, m); bestMatches == nil || s > best {
			best, bestMatches = s, m
		}
	}
	return best, bestMatches
}

func scan(q, orig, lower []rune, preferStarts bool) []int {
	matches := make([]int, 0, len(q))
	pos := 0
	for qi, r := range q {
		i := -1
		if preferStarts {
			// Take a word start only if the rest of the query still fits.
			for j := pos; j < len(lower); j++ {
				if lower[j] == r && isWordStart(orig, j) && fits(q[qi+1:], lower[j+1:]) {
					i = j
					break
				}
			}
		}
		if i < 0 {
			i = slices.Index(lower[pos:], r)
			if i < 0 {
				return nil
			}
			i += pos
		}
		matches = append(matches, i)
		pos = i + 1
	}
	return matches
}

// fits reports whether q is a subsequence of text.
func fits(q, text []rune) bool {
	i := 0
	for _, r := range text {
		if i < len(q) && q[i] == r {
			i++
		}
	}
	return i == len(q)
}

func score(q, orig, lower []rune, matches []int) int {
	s := 100
	for i, idx := range matches {
		if i > 0 && idx == matches[i-1]+1 {
			s += 20
		}
		if isWordStart(orig, idx) {
			s += 15
		}
	}
	if matches[0] == 0 {
		s += 25
	}
	s -= matches[0]

	gap := matches[len(matches)-1] - matches[0] - len(matches) + 1
	s -= 2 * gap

	if n := len(lower); n < 20 {
		s += 20 - n
	}
	if len(lower) >= len(q) && slices.Equal(lower[:len(q)], q) {
		s += 50
	}
	return max(s, 1)
}

// isWordStart reports whether idx starts a word in a CamelCase or
// separated name.
func isWordStart(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	prev, cur := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
