package game

import "sort"

// Tally counts votes per candidate for one voting sub-phase.
type Tally struct {
	counts map[string]int
}

func NewTally(candidates []string) *Tally {
	t := &Tally{counts: make(map[string]int, len(candidates))}
	for _, c := range candidates {
		t.counts[c] = 0
	}
	return t
}

// Add counts one vote. Votes for names outside the candidate list are refused.
func (t *Tally) Add(candidate string) bool {
	if _, ok := t.counts[candidate]; !ok {
		return false
	}
	t.counts[candidate]++
	return true
}

func (t *Tally) Count(candidate string) int {
	return t.counts[candidate]
}

func (t *Tally) Total() int {
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}

// Leader returns the candidate with the most votes. Ties, including the case
// where nobody voted, go to the lexicographically smallest name.
func (t *Tally) Leader() (string, bool) {
	if len(t.counts) == 0 {
		return "", false
	}
	names := make([]string, 0, len(t.counts))
	for name := range t.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	leader := names[0]
	for _, name := range names[1:] {
		if t.counts[name] > t.counts[leader] {
			leader = name
		}
	}
	return leader, true
}
