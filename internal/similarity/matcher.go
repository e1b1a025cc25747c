// Package similarity finds existing guests whose normalized names are close
// to a sign-in key. Matching is tuned for short human names, not arbitrary
// text: substrings, shared name tokens and small typos.
package similarity

import (
	"sort"
	"strings"

	"github.com/snapfest/snapfest/internal/model"
)

// MinKeyLength is the minimum normalized-key length (in runes) for which
// similarity search runs at all. Shorter keys produce too many false
// positives to be useful as suggestions.
const MinKeyLength = 3

// shortKeyLength is the boundary below which only a single-character typo is
// tolerated; longer keys allow distance 2 when lengths are close.
const shortKeyLength = 6

// Entry is one member of the existing guest pool.
type Entry struct {
	ID  model.GuestID
	Key string // normalized name
}

type candidate struct {
	id model.GuestID
	// structural matches (substring, shared token) rank ahead of pure
	// edit-distance matches
	structural bool
	dist       int
	order      int
}

// FindCandidates returns the IDs of pool entries judged similar-but-not-equal
// to key, best match first. Exact equality is excluded: an exact hit is a
// direct sign-in upstream, not a suggestion.
func FindCandidates(key string, pool []Entry) []model.GuestID {
	if len([]rune(key)) < MinKeyLength {
		return nil
	}

	var cands []candidate
	for i, e := range pool {
		if e.Key == "" || e.Key == key {
			continue
		}
		structural := isStructuralMatch(key, e.Key)
		dist := Levenshtein(key, e.Key)
		if !structural && !withinTypoDistance(key, e.Key, dist) {
			continue
		}
		cands = append(cands, candidate{id: e.ID, structural: structural, dist: dist, order: i})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].structural != cands[j].structural {
			return cands[i].structural
		}
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].order < cands[j].order
	})

	ids := make([]model.GuestID, len(cands))
	for i, c := range cands {
		ids[i] = c.id
	}
	return ids
}

// isStructuralMatch reports whether one key contains the other ("pedro" vs
// "pedro bolson") or the two share an exact whitespace-delimited token.
func isStructuralMatch(a, b string) bool {
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	bTokens := make(map[string]struct{})
	for _, t := range strings.Fields(b) {
		bTokens[t] = struct{}{}
	}
	for _, t := range strings.Fields(a) {
		if _, ok := bTokens[t]; ok {
			return true
		}
	}
	return false
}

// withinTypoDistance applies the length-scaled edit-distance threshold:
// short keys tolerate exactly one typo; longer keys tolerate two, but only
// when the lengths are within two of each other.
func withinTypoDistance(key, other string, dist int) bool {
	keyLen := len([]rune(key))
	otherLen := len([]rune(other))
	if keyLen <= shortKeyLength {
		return dist == 1
	}
	diff := keyLen - otherLen
	if diff < 0 {
		diff = -diff
	}
	return dist <= 2 && diff <= 2
}

// Levenshtein computes the classic unit-cost edit distance (insert, delete,
// substitute) between two strings, by rune.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
