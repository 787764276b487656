// Package suspicion scores accounts for likely fake/impersonation activity.
// It combines a geolocation-outlier signal, a social-graph signal, and a
// look-alike name-substitution signal into a small integer score per
// account, in two modes: batch cross-comparison over a set of similar
// accounts, and pairwise reporter-versus-reportee comparison after a live
// impersonation report.
package suspicion

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/modsentry/modsentry/internal/account"
	"github.com/modsentry/modsentry/internal/flagged"
	"github.com/modsentry/modsentry/internal/geo"
)

// Config holds the scoring thresholds.
type Config struct {
	// GeoThresholdMiles is the distance beyond which two accounts are
	// considered geographically inconsistent.
	GeoThresholdMiles float64

	// FlaggedFollowerThreshold is the number of previously-flagged accounts
	// in a reportee's follower/following lists above which the social-graph
	// signal triggers in pairwise mode.
	FlaggedFollowerThreshold int

	// ReportCountBenchmark is the report count at or above which an account
	// carries an unusual report count.
	ReportCountBenchmark int
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		GeoThresholdMiles:        500,
		FlaggedFollowerThreshold: 5,
		ReportCountBenchmark:     1,
	}
}

// Scorer computes suspicion scores. Scoring is stateless apart from the
// explicit report-count side effect of ScorePair; every call recomputes from
// the descriptors it is given.
type Scorer struct {
	cfg      Config
	resolver geo.Resolver
	index    flagged.Index
	logger   *zap.Logger
}

// NewScorer creates a Scorer. Zero-valued config fields fall back to the
// defaults.
func NewScorer(cfg Config, resolver geo.Resolver, index flagged.Index, logger *zap.Logger) *Scorer {
	def := DefaultConfig()
	if cfg.GeoThresholdMiles == 0 {
		cfg.GeoThresholdMiles = def.GeoThresholdMiles
	}
	if cfg.FlaggedFollowerThreshold == 0 {
		cfg.FlaggedFollowerThreshold = def.FlaggedFollowerThreshold
	}
	if cfg.ReportCountBenchmark == 0 {
		cfg.ReportCountBenchmark = def.ReportCountBenchmark
	}
	return &Scorer{cfg: cfg, resolver: resolver, index: index, logger: logger}
}

// BatchResult is the outcome of a batch scoring run.
type BatchResult struct {
	// IDs lists the scored account ids in criteria-set insertion order.
	IDs []string

	// Scores maps scored account id to suspicion score in [0,3].
	Scores map[string]int

	// UnusualReportCounts maps account id to the unusual-report-count flag,
	// for every account whose location resolved.
	UnusualReportCounts map[string]bool

	// Unscored maps account id to the resolution error that excluded it.
	// A non-empty map means scoring was partial, not failed.
	Unscored map[string]error
}

// ScoreBatch cross-compares the accounts in set. Accounts whose reported
// reasons include impersonation receive a score; every resolvable account
// receives an unusual-report-count flag. Location resolution fans out per
// account, and a resolution failure excludes only that account.
func (s *Scorer) ScoreBatch(ctx context.Context, set *account.CriteriaSet) (*BatchResult, error) {
	if set.Len() == 0 {
		return nil, fmt.Errorf("empty criteria set")
	}

	result := &BatchResult{
		Scores:              make(map[string]int),
		UnusualReportCounts: make(map[string]bool),
		Unscored:            make(map[string]error),
	}

	s.resolveLocations(ctx, set, result)

	for _, id := range set.IDs() {
		if _, failed := result.Unscored[id]; failed {
			continue
		}
		d, _ := set.Get(id)

		result.UnusualReportCounts[id] = d.ReportCount >= s.cfg.ReportCountBenchmark
		if !d.ReportedFor(account.ReasonImpersonation) {
			continue
		}

		score := s.geoOutlier(id, set, result.Unscored) +
			socialGraphBatch(d) +
			nameSubstitutionBatch(id, set)
		result.IDs = append(result.IDs, id)
		result.Scores[id] = score
	}

	if len(result.Unscored) > 0 && s.logger != nil {
		s.logger.Warn("partial batch scoring",
			zap.Int("unscored", len(result.Unscored)),
			zap.Int("total", set.Len()),
		)
	}
	return result, nil
}

// resolveLocations fills in missing descriptor locations concurrently.
// Failures land in result.Unscored keyed by account id.
func (s *Scorer) resolveLocations(ctx context.Context, set *account.CriteriaSet, result *BatchResult) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, id := range set.IDs() {
		d, _ := set.Get(id)
		if d.Location != nil {
			continue
		}
		if d.IPAddress == "" {
			mu.Lock()
			result.Unscored[id] = &geo.ResolutionError{IP: "", Err: fmt.Errorf("no ip address")}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(id string, d *account.Descriptor) {
			defer wg.Done()
			p, err := s.resolver.ResolveLocation(ctx, d.IPAddress)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Unscored[id] = err
				return
			}
			d.Location = &p
		}(id, d)
	}
	wg.Wait()
}

// geoOutlier flags the account when its distance to more than half of the
// other located accounts exceeds the threshold.
func (s *Scorer) geoOutlier(curID string, set *account.CriteriaSet, unscored map[string]error) int {
	cur, _ := set.Get(curID)
	if cur.Location == nil {
		return 0
	}

	others, exceeded := 0, 0
	for _, id := range set.IDs() {
		if id == curID {
			continue
		}
		if _, failed := unscored[id]; failed {
			continue
		}
		other, _ := set.Get(id)
		if other.Location == nil {
			continue
		}
		others++
		if geo.DistanceMiles(*cur.Location, *other.Location) > s.cfg.GeoThresholdMiles {
			exceeded++
		}
	}

	if others > 0 && float64(exceeded) > float64(others)/2 {
		return 1
	}
	return 0
}

// PairResult is the outcome of a reporter-versus-reportee scoring run.
type PairResult struct {
	// Reportee is the reported account's display name; pairwise results are
	// keyed by name rather than account id.
	Reportee string `json:"reportee"`

	// Score is the suspicion score in [0,3]. The direct-report signal is not
	// folded into the score; it surfaces as UnusualReportCount.
	Score int `json:"score"`

	UnusualReportCount bool `json:"unusual_report_count"`

	// Degraded lists signals that could not be computed, for the moderator
	// summary.
	Degraded []string `json:"degraded,omitempty"`
}

// ScorePair compares reporter and reportee directly. As a side effect the
// reportee's report count is incremented; the mutation is left on the
// descriptor so the caller can persist it.
func (s *Scorer) ScorePair(ctx context.Context, reporter, reportee *account.Descriptor) (*PairResult, error) {
	if reporter == nil || reportee == nil {
		return nil, fmt.Errorf("both reporter and reportee descriptors are required")
	}

	result := &PairResult{Reportee: reportee.Name}

	s.ensureLocation(ctx, reporter, result)
	s.ensureLocation(ctx, reportee, result)
	if reporter.Location != nil && reportee.Location != nil {
		if geo.DistanceMiles(*reporter.Location, *reportee.Location) > s.cfg.GeoThresholdMiles {
			result.Score++
		}
	}

	graphFlag, err := socialGraphPair(ctx, reportee, s.index, s.cfg.FlaggedFollowerThreshold)
	if err != nil {
		result.Degraded = append(result.Degraded, fmt.Sprintf("social-graph signal unavailable: %v", err))
	} else {
		result.Score += graphFlag
	}

	result.Score += nameSubstitutionPair(reporter.Name, reportee.Name)

	reportee.ReportCount++
	result.UnusualReportCount = reportee.ReportCount >= s.cfg.ReportCountBenchmark

	return result, nil
}

func (s *Scorer) ensureLocation(ctx context.Context, d *account.Descriptor, result *PairResult) {
	if d.Location != nil || d.IPAddress == "" {
		if d.Location == nil {
			result.Degraded = append(result.Degraded, fmt.Sprintf("geo signal unavailable for %s: no ip address", d.Name))
		}
		return
	}
	p, err := s.resolver.ResolveLocation(ctx, d.IPAddress)
	if err != nil {
		result.Degraded = append(result.Degraded, fmt.Sprintf("geo signal unavailable for %s: %v", d.Name, err))
		return
	}
	d.Location = &p
}
