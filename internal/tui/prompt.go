package tui

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// resolveCluster maps typed text onto a known cluster label: exact match, then prefix,
// then the closest label (or label prefix of the same length) within 40% edits of the
// input. Anything else comes back verbatim so an unknown name still toggles.
func resolveCluster(input string, domain []string) string {
	raw := strings.TrimSpace(input)
	q := strings.ToLower(raw)
	if q == "" {
		return ""
	}
	for _, d := range domain {
		if strings.ToLower(d) == q {
			return d
		}
	}
	for _, d := range domain {
		if strings.HasPrefix(strings.ToLower(d), q) {
			return d
		}
	}

	limit := len([]rune(q)) * 2 / 5
	best, bestDist := "", -1
	for _, d := range domain {
		dist := labelDistance(q, strings.ToLower(d))
		if dist > limit {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	if best != "" {
		return best
	}
	return raw
}

func labelDistance(q, label string) int {
	dist := levenshtein.ComputeDistance(q, label)
	lr := []rune(label)
	if n := len([]rune(q)); n < len(lr) {
		dist = min(dist, levenshtein.ComputeDistance(q, string(lr[:n])))
	}
	return dist
}
