package toxicity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultAttributes are the attributes requested from the scoring service.
var DefaultAttributes = []string{
	"TOXICITY", "SEVERE_TOXICITY", "PROFANITY", "IDENTITY_ATTACK", "THREAT", "FLIRTATION",
}

// PerspectiveScorer scores text through a Perspective-style comment
// analysis API.
type PerspectiveScorer struct {
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
}

// NewPerspectiveScorer creates a PerspectiveScorer against the given
// analyze endpoint.
func NewPerspectiveScorer(baseURL, apiKey string) *PerspectiveScorer {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil
	return &PerspectiveScorer{baseURL: baseURL, apiKey: apiKey, client: client}
}

type analyzeRequest struct {
	Comment             struct{ Text string `json:"text"` } `json:"comment"`
	Languages           []string                            `json:"languages"`
	RequestedAttributes map[string]struct{}                 `json:"requestedAttributes"`
	DoNotStore          bool                                `json:"doNotStore"`
}

type analyzeResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

// ScoreText implements Scorer.
func (p *PerspectiveScorer) ScoreText(ctx context.Context, text string) (map[string]float64, error) {
	var reqBody analyzeRequest
	reqBody.Comment.Text = text
	reqBody.Languages = []string{"en"}
	reqBody.RequestedAttributes = make(map[string]struct{}, len(DefaultAttributes))
	for _, attr := range DefaultAttributes {
		reqBody.RequestedAttributes[attr] = struct{}{}
	}
	reqBody.DoNotStore = true

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal analyze request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"?key="+p.apiKey, payload)
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("analyze text: status %d: %s", resp.StatusCode, body)
	}

	var ar analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("decode analyze response: %w", err)
	}

	scores := make(map[string]float64, len(ar.AttributeScores))
	for attr, s := range ar.AttributeScores {
		scores[attr] = s.SummaryScore.Value
	}
	return scores, nil
}
