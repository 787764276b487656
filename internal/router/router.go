// Package router dispatches inbound chat events to the right flow: report
// conversations for direct messages, batch suspicion scoring for monitored
// channel messages, and action commands for the moderator channel. It owns
// the session store and serializes advancement per reporting user.
package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/modsentry/modsentry/internal/account"
	"github.com/modsentry/modsentry/internal/decision"
	"github.com/modsentry/modsentry/internal/flagged"
	"github.com/modsentry/modsentry/internal/platform"
	"github.com/modsentry/modsentry/internal/report"
	"github.com/modsentry/modsentry/internal/reportlog"
	"github.com/modsentry/modsentry/internal/suspicion"
	"github.com/modsentry/modsentry/internal/toxicity"
)

// Config holds the channel wiring and alerting thresholds.
type Config struct {
	// ModChannelID is where scoring summaries and moderator prompts go.
	ModChannelID string

	// ToxicityAlertThreshold is the attribute score above which a forwarded
	// channel message gets a content flag note.
	ToxicityAlertThreshold float64
}

const helpText = "Use the `report` command to begin the reporting process.\n" +
	"Use the `cancel` command to cancel the report process."

// Router routes inbound events through the moderation core.
type Router struct {
	cfg           Config
	gw            platform.Gateway
	sessions      *report.Store
	scorer        *suspicion.Scorer
	directory     account.Directory
	flags         flagged.Store
	log           reportlog.Log
	tox           toxicity.Scorer
	reporteeLocks *keyedLocker
	logger        *zap.Logger
}

// New creates a Router.
func New(cfg Config, gw platform.Gateway, scorer *suspicion.Scorer, directory account.Directory,
	flags flagged.Store, log reportlog.Log, tox toxicity.Scorer, logger *zap.Logger) *Router {
	if cfg.ToxicityAlertThreshold == 0 {
		cfg.ToxicityAlertThreshold = 0.8
	}
	return &Router{
		cfg:           cfg,
		gw:            gw,
		sessions:      report.NewStore(),
		scorer:        scorer,
		directory:     directory,
		flags:         flags,
		log:           log,
		tox:           tox,
		reporteeLocks: newKeyedLocker(),
		logger:        logger,
	}
}

// Sessions exposes the session store for janitor hooks.
func (r *Router) Sessions() *report.Store { return r.sessions }

// HandleDirectMessage advances the sender's report conversation and returns
// the lines to send back. Messages from users with no active session are
// ignored unless they start a report.
func (r *Router) HandleDirectMessage(ctx context.Context, userID, userName, content string) ([]string, error) {
	trimmed := strings.TrimSpace(content)
	if strings.EqualFold(trimmed, report.HelpKeyword) {
		return []string{helpText}, nil
	}

	unlock := r.sessions.Lock(userID)
	defer unlock()

	sess, active := r.sessions.Get(userID)
	if !active {
		if !strings.HasPrefix(strings.ToLower(trimmed), report.StartKeyword) {
			return nil, nil
		}
		sess = report.NewSession(r.gw, userID, userName)
		r.sessions.Put(userID, sess)
		reportsStartedTotal.Inc()
	}

	out, err := sess.HandleMessage(ctx, content)
	if err != nil {
		if errors.Is(err, report.ErrSessionComplete) {
			r.sessions.Remove(userID)
		}
		return nil, err
	}

	if out.Transfer != nil {
		reportsTransferredTotal.Inc()
		r.handleTransfer(ctx, out.Transfer)
	}
	if sess.Done() {
		r.sessions.Remove(userID)
		if out.Transfer != nil {
			reportsClosedTotal.WithLabelValues("transferred").Inc()
		} else {
			reportsClosedTotal.WithLabelValues("closed").Inc()
		}
	}
	return out.Lines, nil
}

// handleTransfer persists a finished report and briefs the mod channel,
// including a pairwise suspicion score when account records are available.
func (r *Router) handleTransfer(ctx context.Context, tr *report.Transfer) {
	entry := &reportlog.Entry{
		Reporter:        tr.Reporter,
		Reportee:        tr.Reportee,
		Category:        tr.Category,
		FakeAccountType: tr.FakeAccountType,
		Behaviors:       tr.Behaviors,
		BlockRequested:  tr.BlockRequested,
		Resolution:      tr.Resolution,
	}
	if err := r.log.Append(ctx, entry); err != nil {
		r.logger.Error("append report log", zap.Error(err))
	}

	summary := fmt.Sprintf("New report transferred to moderation.\nReporter: %s\nReportee: %s\nCategory: %s",
		tr.Reporter, tr.Reportee, tr.Category)
	if tr.FakeAccountType != "" {
		summary += "\nFake account type: " + tr.FakeAccountType
	}
	r.post(ctx, summary)

	if tr.Category == report.CategoryImpersonation {
		r.scorePairAndBrief(ctx, tr)
	}
}

func (r *Router) scorePairAndBrief(ctx context.Context, tr *report.Transfer) {
	// Sessions are serialized per reporter; the reportee's descriptor is
	// shared across reporters, so the read-increment-persist sequence gets
	// its own serialization boundary.
	unlock := r.reporteeLocks.Lock(tr.Reportee)
	defer unlock()

	reporter, err := r.directory.Get(ctx, tr.Reporter)
	if err != nil {
		r.post(ctx, fmt.Sprintf("Pairwise scoring skipped: no account record for reporter %s.", tr.Reporter))
		return
	}
	reportee, err := r.directory.Get(ctx, tr.Reportee)
	if err != nil {
		r.post(ctx, fmt.Sprintf("Pairwise scoring skipped: no account record for reportee %s.", tr.Reportee))
		return
	}

	result, err := r.scorer.ScorePair(ctx, reporter, reportee)
	if err != nil {
		r.logger.Error("pairwise scoring", zap.Error(err))
		r.post(ctx, "Pairwise scoring failed; see service logs.")
		return
	}
	scoringRunsTotal.WithLabelValues("pairwise").Inc()

	// The report-count increment must reach whatever persists the record.
	if err := r.directory.Save(ctx, reportee); err != nil {
		r.logger.Error("persist reportee record", zap.Error(err))
	}

	lines := []string{
		fmt.Sprintf("Suspicion score for %s: %d", result.Reportee, result.Score),
		fmt.Sprintf("Unusual report count: %t", result.UnusualReportCount),
	}
	for _, d := range result.Degraded {
		lines = append(lines, "Partial scoring: "+d)
	}
	r.post(ctx, strings.Join(lines, "\n"))
}

// HandleChannelMessage forwards a monitored-channel message to the mod
// channel and, when the message carries a batch account submission, runs
// batch scoring and posts the summary plus an action prompt.
func (r *Router) HandleChannelMessage(ctx context.Context, msg *platform.Message) error {
	r.post(ctx, fmt.Sprintf("Forwarded message:\n%s: %q", msg.AuthorName, msg.Content))

	if scores, err := r.tox.ScoreText(ctx, msg.Content); err != nil {
		r.logger.Warn("toxicity scoring", zap.Error(err))
	} else if note := r.toxicityNote(scores); note != "" {
		r.post(ctx, note)
	}

	if !strings.HasPrefix(strings.TrimSpace(msg.Content), "{") {
		return nil
	}

	set, err := account.ParseBatch([]byte(msg.Content))
	if err != nil {
		r.post(ctx, "Could not parse account submission: "+err.Error())
		return nil
	}

	result, err := r.scorer.ScoreBatch(ctx, set)
	if err != nil {
		return fmt.Errorf("batch scoring: %w", err)
	}
	scoringRunsTotal.WithLabelValues("batch").Inc()
	unscoredAccountsTotal.Add(float64(len(result.Unscored)))

	r.post(ctx, r.batchSummary(set, result))
	return nil
}

func (r *Router) batchSummary(set *account.CriteriaSet, result *suspicion.BatchResult) string {
	var b strings.Builder
	b.WriteString("Suspicion scores for the submitted accounts:\n")
	for _, id := range result.IDs {
		fmt.Fprintf(&b, "  %s: %d\n", id, result.Scores[id])
	}

	b.WriteString("Accounts with unusually high report counts:\n")
	flaggedAny := false
	for _, id := range set.IDs() {
		if result.UnusualReportCounts[id] {
			fmt.Fprintf(&b, "  %s\n", id)
			flaggedAny = true
		}
	}
	if !flaggedAny {
		b.WriteString("  (none)\n")
	}

	if len(result.Unscored) > 0 {
		fmt.Fprintf(&b, "%d of %d accounts could not be scored:\n", len(result.Unscored), set.Len())
		for _, id := range set.IDs() {
			if resErr, ok := result.Unscored[id]; ok {
				fmt.Fprintf(&b, "  %s: %v\n", id, resErr)
			}
		}
	}

	recommended, err := decision.Recommend(result.IDs, result.Scores, result.UnusualReportCounts)
	switch {
	case errors.Is(err, decision.ErrNoScores):
		b.WriteString("No impersonation-reported accounts to evaluate.\n")
	case err != nil:
		b.WriteString("Recommendation unavailable: " + err.Error() + "\n")
	case len(recommended) == 0:
		b.WriteString("No account stands out against the batch average.\n")
	default:
		b.WriteString("Recommended for action: " + strings.Join(recommended, ", ") + "\n")
	}

	b.WriteString("On which account would you like to take an action?\n")
	b.WriteString("Reply with the account id and the action (BAN, SUSPEND or DEFER), separated by a comma.")
	return b.String()
}

func (r *Router) toxicityNote(scores map[string]float64) string {
	var attrs []string
	for attr, score := range scores {
		if score >= r.cfg.ToxicityAlertThreshold {
			attrs = append(attrs, fmt.Sprintf("%s=%.2f", attr, score))
		}
	}
	if len(attrs) == 0 {
		return ""
	}
	sort.Strings(attrs)
	return "Content flags: " + strings.Join(attrs, ", ")
}

// HandleModeratorMessage parses an action command from the moderator
// channel. Invalid commands are echoed back, never silently dropped.
func (r *Router) HandleModeratorMessage(ctx context.Context, msg *platform.Message) error {
	accountID, action, err := decision.ParseCommand(msg.Content)
	if err != nil {
		r.post(ctx, err.Error())
		return nil
	}

	switch action {
	case decision.ActionBan, decision.ActionSuspend:
		if err := r.flags.SetFlagged(ctx, accountID, true); err != nil {
			return fmt.Errorf("flag account %s: %w", accountID, err)
		}
	case decision.ActionDefer:
		// Deferred accounts keep their current index state.
	}

	moderatorActionsTotal.WithLabelValues(string(action)).Inc()
	r.logger.Info("moderator action",
		zap.String("account", accountID),
		zap.String("action", string(action)),
		zap.String("moderator", msg.AuthorName),
	)
	r.post(ctx, fmt.Sprintf("Recorded %s for account %s.", action, accountID))
	return nil
}

// post sends text to the mod channel, logging delivery failures.
func (r *Router) post(ctx context.Context, text string) {
	if err := r.gw.SendMessage(ctx, r.cfg.ModChannelID, text); err != nil {
		r.logger.Error("send to mod channel", zap.Error(err))
	}
}
