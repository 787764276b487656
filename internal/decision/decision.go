// Package decision reduces suspicion scores into a recommended action list
// for moderators, and parses moderator action commands.
package decision

import (
	"errors"
	"fmt"
)

// ErrNoScores is returned when Recommend is called with an empty score set.
// An empty input is a contract violation by the caller, never a silent
// empty recommendation.
var ErrNoScores = errors.New("no scores to evaluate")

// Recommend returns the ids of accounts whose score strictly exceeds the
// average score AND whose report count is flagged as unusual. ids carries
// the evaluation order, so the result is deterministic; accounts that tie
// the average are excluded.
func Recommend(ids []string, scores map[string]int, unusual map[string]bool) ([]string, error) {
	if len(ids) == 0 {
		return nil, ErrNoScores
	}

	sum := 0
	for _, id := range ids {
		score, ok := scores[id]
		if !ok {
			return nil, fmt.Errorf("no score for account %q", id)
		}
		sum += score
	}
	average := float64(sum) / float64(len(ids))

	var recommended []string
	for _, id := range ids {
		if float64(scores[id]) > average && unusual[id] {
			recommended = append(recommended, id)
		}
	}
	return recommended, nil
}
