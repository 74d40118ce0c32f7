package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// engine. Keeping these as constants helps avoid drift between Cobra flag
// wiring and other code paths that reference flags (e.g. help text and
// environment-override documentation).
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Targeting
	FlagScope     = "scope"
	FlagScopeName = "scope-name"
	FlagFeatures  = "features"

	// API
	FlagAPIURL    = "api-url"
	FlagServerURL = "server-url"
	FlagToken     = "token"

	// Output
	FlagOutDir = "out-dir"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagEnvFile     = "env-file"
)

// Environment variable names recognized by the config resolver. Flags take
// precedence over these when both are set.
const (
	EnvAPIURL            = "GITHUB_API_URL"
	EnvServerURL         = "GITHUB_SERVER_URL"
	EnvPAT               = "GITHUB_PAT"
	EnvToken             = "GITHUB_TOKEN"
	EnvReportScope       = "GITHUB_REPORT_SCOPE"
	EnvScopeName         = "SCOPE_NAME"
	EnvRepository        = "GITHUB_REPOSITORY"
	EnvFeatures          = "FEATURES"
	EnvAppID             = "GITHUB_APP_ID"
	EnvAppInstallationID = "GITHUB_APP_INSTALLATION_ID"
	EnvAppPrivateKey     = "GITHUB_APP_PRIVATE_KEY"
	EnvSlackWebhookURL   = "SLACK_WEBHOOK_URL"
)
