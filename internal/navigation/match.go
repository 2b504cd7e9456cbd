package navigation

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/jonathan/architect/internal/types"
)

// DefaultThreshold is the minimum similarity for a fuzzy project match.
const DefaultThreshold = 0.6

// minWindowLen is the shortest target compared against substrings of a name.
const minWindowLen = 3

// Matcher resolves a free-text target to a project by typo-tolerant name matching.
type Matcher struct {
	Threshold float64
}

// NewMatcher returns a Matcher; a non-positive threshold uses DefaultThreshold.
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

// Score returns the similarity in [0,1] between target and name.
// The target is compared against the whole name and against every same-length
// window of it, so a partial name with a typo still scores high.
func (m Matcher) Score(target, name string) float64 {
	t := []rune(strings.ToLower(strings.TrimSpace(target)))
	n := []rune(strings.ToLower(strings.TrimSpace(name)))
	if len(t) == 0 || len(n) == 0 {
		return 0
	}

	best := levenshtein.Similarity(string(t), string(n), nil)
	if len(t) < minWindowLen || len(t) >= len(n) {
		return best
	}
	for i := 0; i+len(t) <= len(n); i++ {
		if s := levenshtein.Similarity(string(t), string(n[i:i+len(t)]), nil); s > best {
			best = s
		}
	}
	return best
}

// Best returns the id of the highest scoring project at or above the threshold.
// Ties go to the earlier project in the list.
func (m Matcher) Best(target string, projects []types.Project) (string, float64, bool) {
	threshold := m.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	bestID := ""
	bestScore := 0.0
	for i := range projects {
		s := m.Score(target, projects[i].Name)
		if s > bestScore {
			bestID, bestScore = projects[i].ID, s
		}
	}
	if bestID == "" || bestScore < threshold {
		return "", bestScore, false
	}
	return bestID, bestScore, true
}
