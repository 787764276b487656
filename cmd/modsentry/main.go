package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/modsentry/modsentry/internal/account"
	"github.com/modsentry/modsentry/internal/flagged"
	"github.com/modsentry/modsentry/internal/geo"
	"github.com/modsentry/modsentry/internal/platform"
	"github.com/modsentry/modsentry/internal/reportlog"
	"github.com/modsentry/modsentry/internal/router"
	"github.com/modsentry/modsentry/internal/suspicion"
	"github.com/modsentry/modsentry/internal/toxicity"
	"github.com/modsentry/modsentry/internal/webapi"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("modsentry exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	// ── Configuration ────────────────────────────────────────────────────────
	viper.SetConfigName("modsentry")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("server.rate_limit_rps", 20)
	viper.SetDefault("server.admin_secret", "")
	viper.SetDefault("database.url", "")
	viper.SetDefault("scoring.geo_threshold_miles", 500)
	viper.SetDefault("scoring.flagged_follower_threshold", 5)
	viper.SetDefault("scoring.report_count_benchmark", 1)
	viper.SetDefault("geoip.api_key", "")
	viper.SetDefault("geoip.base_url", "https://api.ipgeolocation.io/ipgeo")
	viper.SetDefault("toxicity.api_key", "")
	viper.SetDefault("toxicity.base_url", "https://commentanalyzer.googleapis.com/v1alpha1/comments:analyze")
	viper.SetDefault("toxicity.alert_threshold", 0.8)
	viper.SetDefault("platform.guild_id", "1")
	viper.SetDefault("platform.mod_channel", "mod")
	viper.SetDefault("platform.monitor_channel", "general")
	viper.SetDefault("sessions.idle_eviction", "30m")

	if err := viper.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgNotFound) {
			return fmt.Errorf("read config: %w", err)
		}
		logger.Warn("no config file found, using defaults and env vars")
	}

	// ── Storage ──────────────────────────────────────────────────────────────
	var (
		flags   flagged.Store
		reports reportlog.Log
	)
	dbURL := viper.GetString("database.url")
	if dbURL != "" {
		db, err := pgxpool.New(context.Background(), dbURL)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer db.Close()
		if err := db.Ping(context.Background()); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		logger.Info("connected to postgres")

		pgFlags := flagged.NewPostgresStore(db, logger)
		if err := pgFlags.Migrate(context.Background()); err != nil {
			return fmt.Errorf("migrate flagged_accounts: %w", err)
		}
		pgReports := reportlog.NewPostgresLog(db, logger)
		if err := pgReports.Migrate(context.Background()); err != nil {
			return fmt.Errorf("migrate moderation_reports: %w", err)
		}
		flags = pgFlags
		reports = pgReports
	} else {
		flags = flagged.NewMemoryStore()
		reports = reportlog.NewMemoryLog()
		logger.Info("storage: in-memory (set database.url to enable postgres)")
	}

	// ── Location resolution ──────────────────────────────────────────────────
	var resolver geo.Resolver
	geoKey := viper.GetString("geoip.api_key")
	if geoKey != "" {
		resolver = geo.NewHTTPResolver(viper.GetString("geoip.base_url"), geoKey)
		logger.Info("geolocation resolver configured", zap.String("base_url", viper.GetString("geoip.base_url")))
	} else {
		resolver = geo.NewStaticResolver(nil)
		logger.Info("geolocation resolver: static (set geoip.api_key to enable lookups)")
	}

	// ── Toxicity scoring ─────────────────────────────────────────────────────
	var tox toxicity.Scorer
	toxKey := viper.GetString("toxicity.api_key")
	if toxKey != "" {
		tox = toxicity.NewPerspectiveScorer(viper.GetString("toxicity.base_url"), toxKey)
		logger.Info("toxicity scorer configured")
	} else {
		tox = toxicity.NewNoopScorer(logger)
		logger.Info("toxicity scorer: noop (set toxicity.api_key to enable)")
	}

	// ── Moderation core ──────────────────────────────────────────────────────
	scorer := suspicion.NewScorer(suspicion.Config{
		GeoThresholdMiles:        viper.GetFloat64("scoring.geo_threshold_miles"),
		FlaggedFollowerThreshold: viper.GetInt("scoring.flagged_follower_threshold"),
		ReportCountBenchmark:     viper.GetInt("scoring.report_count_benchmark"),
	}, resolver, flags, logger)

	gw := platform.NewMemoryGateway()
	gw.AddGuild(&platform.Guild{
		ID:   viper.GetString("platform.guild_id"),
		Name: "primary",
	})
	gw.AddChannel(&platform.Channel{
		ID:      viper.GetString("platform.mod_channel"),
		GuildID: viper.GetString("platform.guild_id"),
		Name:    "mod",
	})
	gw.AddChannel(&platform.Channel{
		ID:      viper.GetString("platform.monitor_channel"),
		GuildID: viper.GetString("platform.guild_id"),
		Name:    "general",
	})

	core := router.New(
		router.Config{
			ModChannelID:           viper.GetString("platform.mod_channel"),
			ToxicityAlertThreshold: viper.GetFloat64("toxicity.alert_threshold"),
		},
		gw, scorer, account.NewMemoryDirectory(), flags, reports, tox, logger,
	)

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := webapi.NewServer(webapi.Config{
		CORSOrigins:  viper.GetStringSlice("server.cors_origins"),
		RateLimitRPS: viper.GetInt("server.rate_limit_rps"),
		AdminSecret:  viper.GetString("server.admin_secret"),
	}, core, reports, flags, logger)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("server.port")),
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// ── Background: evict idle report sessions ───────────────────────────────
	idle := viper.GetDuration("sessions.idle_eviction")
	if idle > 0 {
		go func() {
			ticker := time.NewTicker(idle / 2)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if n := core.Sessions().EvictIdle(idle); n > 0 {
						logger.Info("evicted idle report sessions", zap.Int("count", n))
					}
				case <-quit:
					return
				}
			}
		}()
	}

	go func() {
		logger.Info("modsentry HTTP listening", zap.Int("port", viper.GetInt("server.port")))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP listen error", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	<-quit
	logger.Info("shutting down modsentry...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("modsentry stopped")
	return nil
}
