// Package toxicity provides the optional comment-scoring collaborator. It
// returns per-attribute scores for a piece of text; the rest of the system
// treats it as a pure function and works fine without it.
package toxicity

import "context"

// Scorer scores a piece of text and returns a mapping from attribute name
// (TOXICITY, THREAT, ...) to a score in [0,1].
type Scorer interface {
	ScoreText(ctx context.Context, text string) (map[string]float64, error)
}
