package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modsentry_reports_started_total",
		Help: "Total report conversations started.",
	})

	reportsTransferredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modsentry_reports_transferred_total",
		Help: "Total reports handed to the moderation pipeline.",
	})

	reportsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modsentry_reports_closed_total",
		Help: "Total report conversations closed, by outcome.",
	}, []string{"outcome"})

	scoringRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modsentry_scoring_runs_total",
		Help: "Total suspicion scoring runs by mode.",
	}, []string{"mode"})

	unscoredAccountsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modsentry_unscored_accounts_total",
		Help: "Total accounts excluded from batch scoring by resolution failures.",
	})

	moderatorActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modsentry_moderator_actions_total",
		Help: "Total moderator actions by kind.",
	}, []string{"action"})
)
