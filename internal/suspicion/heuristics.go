package suspicion

import (
	"context"
	"regexp"

	"github.com/modsentry/modsentry/internal/account"
	"github.com/modsentry/modsentry/internal/flagged"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// nameSubstitutionBatch detects look-alike character substitution in the
// account curID's name against the rest of the criteria set.
//
// For each character position, when more than half the set carries a
// different character there, the most frequent differing character (ties
// broken by set insertion order) is checked against the current character
// for confusable-class membership.
func nameSubstitutionBatch(curID string, set *account.CriteriaSet) int {
	cur, ok := set.Get(curID)
	if !ok {
		return 0
	}
	curName := []rune(cur.Name)
	subCount := 0

	for i, curChar := range curName {
		diff := 0
		counts := make(map[rune]int)
		var mostFrequent rune
		best := 0

		for _, id := range set.IDs() {
			if id == curID {
				continue
			}
			other, _ := set.Get(id)
			name := []rune(other.Name)
			if i >= len(name) {
				continue
			}
			if name[i] != curChar {
				diff++
				counts[name[i]]++
				if counts[name[i]] > best {
					best = counts[name[i]]
					mostFrequent = name[i]
				}
			}
		}

		if best > 0 && float64(diff) > float64(set.Len())/2 &&
			sameConfusableClass(curChar, mostFrequent) {
			subCount++
		}
	}

	if subCount > 0 {
		return 1
	}
	return 0
}

// nameSubstitutionPair compares two names position by position up to the
// shorter length and flags confusable-class substitutions.
func nameSubstitutionPair(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] && sameConfusableClass(ra[i], rb[i]) {
			return 1
		}
	}
	return 0
}

// socialGraphBatch flags an account whose follower or following field holds
// no parsable digit run, i.e. a malformed or empty social graph. Both fields
// are validated independently.
func socialGraphBatch(d *account.Descriptor) int {
	if !digitRun.MatchString(d.FollowersField) || !digitRun.MatchString(d.FollowingField) {
		return 1
	}
	return 0
}

// socialGraphPair flags the reportee when either list is empty, or when the
// number of its followers and following present in the flagged-account index
// exceeds threshold.
func socialGraphPair(ctx context.Context, reportee *account.Descriptor, index flagged.Index, threshold int) (int, error) {
	if len(reportee.Followers) == 0 || len(reportee.Following) == 0 {
		return 1, nil
	}

	flaggedCount := 0
	for _, id := range append(append([]string{}, reportee.Followers...), reportee.Following...) {
		f, err := index.IsFlagged(ctx, id)
		if err != nil {
			return 0, err
		}
		if f {
			flaggedCount++
		}
	}
	if flaggedCount > threshold {
		return 1, nil
	}
	return 0, nil
}
