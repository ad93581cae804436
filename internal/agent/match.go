package agent

import (
	"sort"
	"strings"
)

// MatchCandidate maps a free-form vote onto a candidate: an exact
// (case-insensitive) name wins, otherwise the longest candidate name that
// appears in the reply.
func MatchCandidate(reply string, candidates []string) (string, bool) {
	cleaned := strings.ToLower(strings.Trim(strings.TrimSpace(reply), ".,!?\"'*"))
	if cleaned == "" {
		return "", false
	}
	for _, c := range candidates {
		if strings.ToLower(c) == cleaned {
			return c, true
		}
	}
	byLength := append([]string(nil), candidates...)
	sort.SliceStable(byLength, func(i, j int) bool { return len(byLength[i]) > len(byLength[j]) })
	for _, c := range byLength {
		if strings.Contains(cleaned, strings.ToLower(c)) {
			return c, true
		}
	}
	return "", false
}
