package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ghasreport/internal/config"
	"ghasreport/internal/engine"
	"ghasreport/internal/flags"
	gh "ghasreport/internal/github"
	"ghasreport/internal/notify"
	"ghasreport/internal/report"
)

// reportOpts holds flag values for the report command. They are applied on
// top of FromEnv only when the flag was set, so flags win over environment
// variables without clobbering them otherwise.
var reportOpts struct {
	scope       string
	scopeName   string
	features    []string
	apiURL      string
	serverURL   string
	token       string
	outDir      string
	concurrency int
	timeout     time.Duration
	envFile     string
}

const reportHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
	Every flag has an environment fallback; flags win when both are set.

	GITHUB_API_URL              REST API base URL (GHES: https://host/api/v3)
	GITHUB_SERVER_URL           Web UI base URL (used for the GHES repository inventory)
	GITHUB_PAT / GITHUB_TOKEN   Access token (GITHUB_PAT preferred)
	GITHUB_REPORT_SCOPE         repository | organization | enterprise
	SCOPE_NAME                  Scope name (falls back to GITHUB_REPOSITORY)
	FEATURES                    Comma-separated feature list, or "all"
	GITHUB_APP_ID               GitHub App authentication (with the two below)
	GITHUB_APP_INSTALLATION_ID
	GITHUB_APP_PRIVATE_KEY      PEM-encoded App private key
	SLACK_WEBHOOK_URL           Optional run-summary webhook

	An optional .env file in the working directory (or the file named by
	--env-file) is loaded first; real environment variables take precedence.

  Token guidance (brief):
  - PAT (classic): needs repo and security_events; org and enterprise scope
    additionally need read:org.
  - Fine-grained PAT: grant the target repositories Metadata: Read,
    Administration: Read, and the relevant alert read permissions.
`

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch security alerts and write one CSV per feature",
	Long: `Fetch GitHub security alerts for the configured scope and write one CSV
file per feature into the output directory.

Each row carries the alert's fields plus an Admins column listing the admin
logins of the repository the alert belongs to. Features whose product is not
enabled for the scope are skipped with a notice; a feature with zero open
alerts produces no file.

Scopes:
  repository    one repository (scope name is OWNER/REPO)
  organization  every repository in an organization
  enterprise    every organization in a GitHub Enterprise (cloud or server)

Exit codes:
	0 = report complete (skipped features included)
	1 = a fetch or write failed; files written so far are kept
	3 = invalid configuration or authentication failure

Examples:
  export GITHUB_TOKEN="<your_token>"
  ghasreport report --scope repository --scope-name octo/widgets

  # Organization scope, selected features, custom output directory
  ghasreport report --scope organization --scope-name octo-org \
    --features secretscanning,dependabot --out-dir ./reports

  # GitHub Enterprise Server
  ghasreport report --scope enterprise --scope-name github \
    --api-url https://ghes.example.com/api/v3 --server-url https://ghes.example.com
`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && cmd.Flags().NFlag() == 0 && !hasReportEnv() {
			_ = cmd.Help()
			return
		}
		runReport(cmd)
	},
}

// hasReportEnv reports whether the environment alone configures a run, so
// "ghasreport report" without flags still works inside CI.
func hasReportEnv() bool {
	return os.Getenv(flags.EnvScopeName) != "" || os.Getenv(flags.EnvRepository) != ""
}

func runReport(cmd *cobra.Command) {
	if err := loadEnvFile(reportOpts.envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(engine.ExitConfigError)
	}

	cfg := config.FromEnv(os.Getenv)
	cfg.Runtime.Verbose = verbose
	applyFlagOverrides(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(engine.ExitConfigError)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Runtime.Timeout)
	defer cancel()

	opts := []gh.Option{
		gh.WithBaseURL(cfg.API.Endpoint),
		gh.WithVerbose(cfg.Runtime.Verbose, nil),
	}
	token := cfg.API.Token
	if cfg.UseAppAuth() {
		token = ""
		opts = append(opts, gh.WithAppAuth(cfg.App.AppID, cfg.App.InstallationID, []byte(cfg.App.PrivateKey)))
	} else {
		resolved, _, err := gh.ResolveAuthToken(ctx, cfg.API.Token)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to resolve GitHub auth token: %v\n", err)
			os.Exit(engine.ExitConfigError)
		}
		if strings.TrimSpace(resolved) == "" {
			fmt.Fprintln(os.Stderr, "Error: GitHub auth token is required (set GITHUB_PAT or GITHUB_TOKEN, or run 'gh auth login')")
			os.Exit(engine.ExitConfigError)
		}
		token = resolved
	}

	client, err := gh.NewClient(ctx, token, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create GitHub client: %v\n", err)
		os.Exit(engine.ExitConfigError)
	}

	eng := engine.New(client, report.NewConsole(cmd.OutOrStdout()))
	summary, code := eng.Run(ctx, cfg)

	if n := notify.New(cfg.Notify.SlackWebhookURL); n.Enabled() {
		if err := n.PostSummary(ctx, summary); err != nil {
			// A notification failure never changes the run's outcome.
			fmt.Fprintf(os.Stderr, "Warning: Slack notification failed: %v\n", err)
		}
	}
	os.Exit(code)
}

// loadEnvFile loads explicit --env-file (missing file is an error) or a
// best-effort ./.env. godotenv never overrides variables already set in the
// process environment.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading env file %s: %w", path, err)
		}
		return nil
	}
	_ = godotenv.Load()
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed(flags.FlagScope) {
		cfg.Report.Scope = config.Scope(reportOpts.scope)
	}
	if cmd.Flags().Changed(flags.FlagScopeName) {
		cfg.Report.ScopeName = reportOpts.scopeName
	}
	if cmd.Flags().Changed(flags.FlagFeatures) {
		cfg.Report.Features = reportOpts.features
	}
	if cmd.Flags().Changed(flags.FlagAPIURL) {
		cfg.API.Endpoint = reportOpts.apiURL
	}
	if cmd.Flags().Changed(flags.FlagServerURL) {
		cfg.API.ServerURL = reportOpts.serverURL
	}
	if cmd.Flags().Changed(flags.FlagToken) {
		cfg.API.Token = reportOpts.token
	}
	if cmd.Flags().Changed(flags.FlagOutDir) {
		cfg.Report.OutDir = reportOpts.outDir
	}
	if cmd.Flags().Changed(flags.FlagConcurrency) {
		cfg.Runtime.Concurrency = reportOpts.concurrency
	}
	if cmd.Flags().Changed(flags.FlagTimeout) {
		cfg.Runtime.Timeout = reportOpts.timeout
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.SetHelpTemplate(reportHelpTemplate)

	// Targeting
	reportCmd.Flags().StringVar(&reportOpts.scope, flags.FlagScope, string(config.ScopeRepository), "Report scope: repository|organization|enterprise")
	reportCmd.Flags().StringVar(&reportOpts.scopeName, flags.FlagScopeName, "", "Repository OWNER/REPO, organization name, or enterprise slug")
	reportCmd.Flags().StringSliceVar(&reportOpts.features, flags.FlagFeatures, nil, "Features to report: secretscanning|codescanning|dependabot|all (repeatable; comma-separated accepted)")

	// API
	reportCmd.Flags().StringVar(&reportOpts.apiURL, flags.FlagAPIURL, "", "GitHub REST API base URL (default: https://api.github.com)")
	reportCmd.Flags().StringVar(&reportOpts.serverURL, flags.FlagServerURL, "", "GitHub web UI base URL, used for the GHES repository inventory (default: https://github.com)")
	reportCmd.Flags().StringVar(&reportOpts.token, flags.FlagToken, "", "GitHub access token (overrides GITHUB_PAT / GITHUB_TOKEN)")

	// Output
	reportCmd.Flags().StringVar(&reportOpts.outDir, flags.FlagOutDir, ".", "Directory to write CSV files into")

	// Runtime
	reportCmd.Flags().IntVar(&reportOpts.concurrency, flags.FlagConcurrency, 5, "Concurrent per-repository API calls (default: 5)")
	reportCmd.Flags().DurationVar(&reportOpts.timeout, flags.FlagTimeout, 30*time.Minute, "Global timeout (default: 30m)")
	reportCmd.Flags().StringVar(&reportOpts.envFile, flags.FlagEnvFile, "", "Load environment variables from this file before resolving config")
}
