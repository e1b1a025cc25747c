package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snapfest/snapfest/internal/model"
)

func pool(keys ...string) []Entry {
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{ID: model.GuestID(k), Key: k}
	}
	return entries
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"ana", "anna", 1},
		{"mariana", "mariane", 1},
		{"kitten", "sitting", 3},
		{"josé", "jose", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "Levenshtein(%q, %q)", tt.a, tt.b)
	}
}

func TestFindCandidatesSubstring(t *testing.T) {
	got := FindCandidates("pedro", pool("pedro bolson", "maria"))
	assert.Equal(t, []model.GuestID{"pedro bolson"}, got)
}

func TestFindCandidatesSharedToken(t *testing.T) {
	got := FindCandidates("bolson silva", pool("pedro bolson"))
	assert.Equal(t, []model.GuestID{"pedro bolson"}, got)
}

func TestFindCandidatesShortNameSingleTypo(t *testing.T) {
	// "ana" vs "anna": distance 1, key length <= 6
	got := FindCandidates("ana", pool("anna"))
	assert.Equal(t, []model.GuestID{"anna"}, got)
}

func TestFindCandidatesShortNameRejectsDistanceTwo(t *testing.T) {
	// "carla" vs "clara" is distance 2; on a key of length <= 6 only a
	// single typo is tolerated
	got := FindCandidates("carla", pool("clara"))
	assert.Empty(t, got)
}

func TestFindCandidatesLongNameDistanceTwo(t *testing.T) {
	got := FindCandidates("mariana", pool("mariane"))
	assert.Equal(t, []model.GuestID{"mariane"}, got)

	got = FindCandidates("marianna", pool("mariane"))
	assert.Equal(t, []model.GuestID{"mariane"}, got)
}

func TestFindCandidatesLongNameRejectsDistanceThree(t *testing.T) {
	// "mariana" vs "marilene" is distance 3 with no shared token: rejected
	got := FindCandidates("mariana", pool("marilene"))
	assert.Empty(t, got)
}

func TestFindCandidatesSubstringBeatsLengthGap(t *testing.T) {
	// lengths differ by more than 2, but the substring rule still applies
	got := FindCandidates("fernando", pool("fernando gomes silva"))
	assert.Equal(t, []model.GuestID{"fernando gomes silva"}, got)
}

func TestFindCandidatesExcludesExactMatch(t *testing.T) {
	got := FindCandidates("pedro", pool("pedro", "pedro bolson"))
	assert.Equal(t, []model.GuestID{"pedro bolson"}, got)
}

func TestFindCandidatesMinimumKeyLength(t *testing.T) {
	// below the floor similarity search is skipped entirely
	assert.Nil(t, FindCandidates("an", pool("ana", "anna", "an silva")))
	// at the floor it runs
	assert.NotEmpty(t, FindCandidates("ana", pool("anna")))
}

func TestFindCandidatesRanking(t *testing.T) {
	// structural matches rank ahead of typo matches; typo matches rank by
	// ascending distance
	got := FindCandidates("mariana", pool("marianes", "mariane", "mariana silva"))
	assert.Equal(t, []model.GuestID{"mariana silva", "mariane", "marianes"}, got)
}

func TestFindCandidatesEmptyPool(t *testing.T) {
	assert.Empty(t, FindCandidates("pedro", nil))
}
