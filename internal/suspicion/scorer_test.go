package suspicion_test

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/modsentry/modsentry/internal/account"
	"github.com/modsentry/modsentry/internal/flagged"
	"github.com/modsentry/modsentry/internal/geo"
	"github.com/modsentry/modsentry/internal/suspicion"
)

var ctx = context.Background()

func descriptor(name string, loc *geo.Point, reportCount int, reasons ...string) *account.Descriptor {
	return &account.Descriptor{
		Name:            name,
		FollowersField:  "120",
		FollowingField:  "45",
		Followers:       []string{"120"},
		Following:       []string{"45"},
		Location:        loc,
		ReportCount:     reportCount,
		ReportedReasons: reasons,
	}
}

func newScorer(t *testing.T, resolver geo.Resolver, index flagged.Index) *suspicion.Scorer {
	t.Helper()
	if resolver == nil {
		resolver = geo.NewStaticResolver(nil)
	}
	if index == nil {
		index = flagged.NewMemoryStore()
	}
	return suspicion.NewScorer(suspicion.DefaultConfig(), resolver, index, zap.NewNop())
}

func TestScoreBatch_cleanAccountsScoreZero(t *testing.T) {
	loc := &geo.Point{Lat: 40.0, Long: -74.0}
	set := account.NewCriteriaSet()
	set.Add("a1", descriptor("red", loc, 0, account.ReasonImpersonation))
	set.Add("a2", descriptor("green", loc, 2, account.ReasonImpersonation))
	set.Add("a3", descriptor("blue", loc, 0, account.ReasonImpersonation))

	result, err := newScorer(t, nil, nil).ScoreBatch(ctx, set)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.IDs) != 3 {
		t.Fatalf("scored %d accounts, want 3", len(result.IDs))
	}
	for id, score := range result.Scores {
		if score != 0 {
			t.Errorf("score[%s] = %d, want 0", id, score)
		}
	}
	if result.UnusualReportCounts["a1"] || !result.UnusualReportCounts["a2"] || result.UnusualReportCounts["a3"] {
		t.Errorf("unusual flags = %v, want only a2", result.UnusualReportCounts)
	}
	if len(result.Unscored) != 0 {
		t.Errorf("Unscored = %v, want empty", result.Unscored)
	}
}

func TestScoreBatch_nameSubstitutionSeedCase(t *testing.T) {
	loc := &geo.Point{Lat: 40.0, Long: -74.0}
	set := account.NewCriteriaSet()
	set.Add("a", descriptor("l0l", loc, 0, account.ReasonImpersonation))
	set.Add("b", descriptor("101", loc, 0, account.ReasonImpersonation))
	set.Add("c", descriptor("lOl", loc, 0, account.ReasonImpersonation))

	result, err := newScorer(t, nil, nil).ScoreBatch(ctx, set)
	if err != nil {
		t.Fatal(err)
	}

	flagged := 0
	for _, score := range result.Scores {
		flagged += score
	}
	if flagged == 0 {
		t.Error("expected at least one account flagged for name substitution")
	}
}

func TestScoreBatch_geoOutlier(t *testing.T) {
	nyc := &geo.Point{Lat: 40.7128, Long: -74.0060}
	boston := &geo.Point{Lat: 42.3601, Long: -71.0589}
	tokyo := &geo.Point{Lat: 35.6762, Long: 139.6503}

	set := account.NewCriteriaSet()
	set.Add("a1", descriptor("red", nyc, 0, account.ReasonImpersonation))
	set.Add("a2", descriptor("green", boston, 0, account.ReasonImpersonation))
	set.Add("a3", descriptor("blue", tokyo, 0, account.ReasonImpersonation))

	result, err := newScorer(t, nil, nil).ScoreBatch(ctx, set)
	if err != nil {
		t.Fatal(err)
	}

	if result.Scores["a3"] != 1 {
		t.Errorf("score[a3] = %d, want 1 (geo outlier)", result.Scores["a3"])
	}
	if result.Scores["a1"] != 0 || result.Scores["a2"] != 0 {
		t.Errorf("scores a1=%d a2=%d, want 0 0", result.Scores["a1"], result.Scores["a2"])
	}
}

func TestScoreBatch_malformedSocialGraph(t *testing.T) {
	loc := &geo.Point{Lat: 40.0, Long: -74.0}
	set := account.NewCriteriaSet()
	bad := descriptor("red", loc, 0, account.ReasonImpersonation)
	bad.FollowersField = "none"
	set.Add("a1", bad)
	set.Add("a2", descriptor("green", loc, 0, account.ReasonImpersonation))
	set.Add("a3", descriptor("blue", loc, 0, account.ReasonImpersonation))

	result, err := newScorer(t, nil, nil).ScoreBatch(ctx, set)
	if err != nil {
		t.Fatal(err)
	}
	if result.Scores["a1"] != 1 {
		t.Errorf("score[a1] = %d, want 1 (malformed graph)", result.Scores["a1"])
	}
}

func TestScoreBatch_resolutionFailureIsolated(t *testing.T) {
	resolver := geo.NewStaticResolver(map[string]geo.Point{
		"1.1.1.1": {Lat: 40.0, Long: -74.0},
		"2.2.2.2": {Lat: 40.1, Long: -74.1},
	})

	set := account.NewCriteriaSet()
	a := descriptor("red", nil, 0, account.ReasonImpersonation)
	a.IPAddress = "1.1.1.1"
	b := descriptor("green", nil, 0, account.ReasonImpersonation)
	b.IPAddress = "2.2.2.2"
	c := descriptor("blue", nil, 0, account.ReasonImpersonation)
	c.IPAddress = "9.9.9.9" // not in resolver table
	set.Add("a1", a)
	set.Add("a2", b)
	set.Add("a3", c)

	result, err := newScorer(t, resolver, nil).ScoreBatch(ctx, set)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Unscored) != 1 {
		t.Fatalf("Unscored = %v, want exactly a3", result.Unscored)
	}
	if _, ok := result.Unscored["a3"]; !ok {
		t.Error("expected a3 in Unscored")
	}
	if _, ok := result.Scores["a3"]; ok {
		t.Error("a3 must not receive a score")
	}
	if len(result.IDs) != 2 {
		t.Errorf("scored %d accounts, want 2", len(result.IDs))
	}
}

func TestScoreBatch_onlyImpersonationScored(t *testing.T) {
	loc := &geo.Point{Lat: 40.0, Long: -74.0}
	set := account.NewCriteriaSet()
	set.Add("a1", descriptor("red", loc, 0, account.ReasonImpersonation))
	set.Add("a2", descriptor("green", loc, 3, "Spam"))

	result, err := newScorer(t, nil, nil).ScoreBatch(ctx, set)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result.Scores["a2"]; ok {
		t.Error("non-impersonation account must not be scored")
	}
	if !result.UnusualReportCounts["a2"] {
		t.Error("unusual report count should still be computed for a2")
	}
}

func TestScorePair_allSignals(t *testing.T) {
	index := flagged.NewMemoryStore()
	reportee := descriptor("al1ce", &geo.Point{Lat: 35.6762, Long: 139.6503}, 0)
	reportee.Followers = []string{"f1", "f2", "f3", "f4", "f5", "f6"}
	reportee.Following = []string{"f7"}
	for _, id := range append(reportee.Followers, reportee.Following...) {
		if err := index.SetFlagged(ctx, id, true); err != nil {
			t.Fatal(err)
		}
	}
	reporter := descriptor("alice", &geo.Point{Lat: 40.7128, Long: -74.0060}, 0)

	result, err := newScorer(t, nil, index).ScorePair(ctx, reporter, reportee)
	if err != nil {
		t.Fatal(err)
	}

	if result.Score != 3 {
		t.Errorf("Score = %d, want 3 (geo + graph + name substitution)", result.Score)
	}
	if result.Reportee != "al1ce" {
		t.Errorf("Reportee = %q, want al1ce", result.Reportee)
	}
	if reportee.ReportCount != 1 {
		t.Errorf("ReportCount = %d, want 1 (side-effect increment)", reportee.ReportCount)
	}
	if !result.UnusualReportCount {
		t.Error("expected unusual report count after increment")
	}
	if len(result.Degraded) != 0 {
		t.Errorf("Degraded = %v, want empty", result.Degraded)
	}
}

func TestScorePair_emptyFollowingFlagsGraph(t *testing.T) {
	reporter := descriptor("alice", &geo.Point{}, 0)
	reportee := descriptor("brett", &geo.Point{}, 0)
	reportee.Following = nil

	result, err := newScorer(t, nil, nil).ScorePair(ctx, reporter, reportee)
	if err != nil {
		t.Fatal(err)
	}
	if result.Score != 1 {
		t.Errorf("Score = %d, want 1 (empty following list)", result.Score)
	}
}

func TestScorePair_resolutionFailureDegrades(t *testing.T) {
	reporter := descriptor("alice", nil, 0)
	reporter.IPAddress = "9.9.9.9"
	reportee := descriptor("brett", &geo.Point{}, 0)

	result, err := newScorer(t, nil, nil).ScorePair(ctx, reporter, reportee)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Degraded) == 0 {
		t.Fatal("expected a degraded-signal note")
	}
	if !strings.Contains(result.Degraded[0], "alice") {
		t.Errorf("Degraded[0] = %q, want mention of alice", result.Degraded[0])
	}
}
