package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modsentry/modsentry/pkg/client"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	serverURL   string
	cfgFile     string
	bearerToken string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "modctl",
	Short: "ModSentry moderation CLI",
	Long: `modctl is the command-line interface for a ModSentry moderation service.

It lets moderators browse completed reports, manage the flagged-account
registry, and exercise the report conversation flow from a terminal.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.modsentry")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if serverURL == "" {
			serverURL = viper.GetString("server_url")
		}
		if serverURL == "" {
			serverURL = "http://localhost:8080"
		}
		if bearerToken == "" {
			bearerToken = viper.GetString("token")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.modsentry/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "ModSentry server URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&bearerToken, "token", "", "moderator bearer token")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(flaggedCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

func newClient() *client.Client {
	opts := []client.Option{}
	if bearerToken != "" {
		opts = append(opts, client.WithBearerToken(bearerToken))
	}
	return client.New(serverURL, opts...)
}

// ── token ────────────────────────────────────────────────────────────────────

var tokenModerator string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange the admin secret for a moderator bearer token",
	Long: `Token mints a moderator bearer token from the shared admin secret.

The secret is read from the MODSENTRY_ADMIN_SECRET environment variable.
Save the printed token under "token:" in ~/.modsentry/config.yaml or pass
it to later commands with --token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := os.Getenv("MODSENTRY_ADMIN_SECRET")
		if secret == "" {
			return fmt.Errorf("MODSENTRY_ADMIN_SECRET is not set")
		}

		token, err := newClient().Token(context.Background(), secret, tokenModerator)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenModerator, "moderator", "moderator", "moderator name to embed in the token")
}

// ── reports ──────────────────────────────────────────────────────────────────

var (
	reportsLimit  int
	reportsOffset int
	reportsFormat string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List completed reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := newClient().ListReports(context.Background(), reportsLimit, reportsOffset)
		if err != nil {
			return err
		}

		if reportsFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CREATED\tREPORTER\tREPORTEE\tCATEGORY\tBLOCKED\tRESOLUTION")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04"),
				e.Reporter, e.Reportee, e.Category, e.BlockRequested, e.Resolution)
		}
		return w.Flush()
	},
}

func init() {
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 50, "maximum number of reports to fetch")
	reportsCmd.Flags().IntVar(&reportsOffset, "offset", 0, "number of reports to skip")
	reportsCmd.Flags().StringVar(&reportsFormat, "format", "text", "Output format: text or json")
}

// ── flagged ──────────────────────────────────────────────────────────────────

var flaggedCmd = &cobra.Command{
	Use:   "flagged",
	Short: "Manage the flagged-account registry",
}

var flaggedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List flagged account IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := newClient().ListFlagged(context.Background())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var flaggedAddCmd = &cobra.Command{
	Use:   "add <account-id>",
	Short: "Flag an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().Flag(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("flagged %s\n", args[0])
		return nil
	},
}

var flaggedRemoveCmd = &cobra.Command{
	Use:   "remove <account-id>",
	Short: "Remove an account's flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().Unflag(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("unflagged %s\n", args[0])
		return nil
	},
}

func init() {
	flaggedCmd.AddCommand(flaggedListCmd)
	flaggedCmd.AddCommand(flaggedAddCmd)
	flaggedCmd.AddCommand(flaggedRemoveCmd)
}

// ── report ───────────────────────────────────────────────────────────────────

var (
	reportUserID   string
	reportUserName string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Walk through the report conversation interactively",
	Long: `Report opens an interactive report conversation against the server.

Each line you type is delivered as a direct-message event; the service's
replies are printed back. Type "cancel" to abandon the report, or press
Ctrl-D to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		ctx := context.Background()

		send := func(content string) error {
			replies, err := c.SubmitEvent(ctx, client.Event{
				Type:     "dm",
				UserID:   reportUserID,
				UserName: reportUserName,
				Content:  content,
			})
			if err != nil {
				return err
			}
			for _, line := range replies {
				fmt.Println(line)
			}
			return nil
		}

		if err := send("report"); err != nil {
			return err
		}

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := send(line); err != nil {
				return err
			}
			if strings.EqualFold(line, "cancel") {
				return nil
			}
		}
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportUserID, "user-id", "cli", "user ID to report as")
	reportCmd.Flags().StringVar(&reportUserName, "user-name", "cli", "user name to report as")
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the modctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("modctl", version)
	},
}
