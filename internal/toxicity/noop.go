package toxicity

import (
	"context"

	"go.uber.org/zap"
)

// NoopScorer returns no scores and logs at debug level. Use when no scoring
// API key is configured.
type NoopScorer struct {
	logger *zap.Logger
}

// NewNoopScorer creates a NoopScorer backed by the given logger.
func NewNoopScorer(logger *zap.Logger) *NoopScorer {
	return &NoopScorer{logger: logger}
}

// ScoreText implements Scorer. It always returns an empty score map.
func (n *NoopScorer) ScoreText(_ context.Context, text string) (map[string]float64, error) {
	n.logger.Debug("toxicity scoring disabled", zap.Int("text_len", len(text)))
	return map[string]float64{}, nil
}
