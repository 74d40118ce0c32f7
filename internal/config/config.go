package config

import (
	"fmt"
	"ghasreport/internal/flags"
	"strconv"
	"strings"
	"time"
)

// Scope is the breadth of a report run: one repository, one organization, or
// one enterprise (multiple organizations).
type Scope string

const (
	ScopeRepository   Scope = "repository"
	ScopeOrganization Scope = "organization"
	ScopeEnterprise   Scope = "enterprise"
)

// Feature names accepted in FEATURES / --features.
const (
	FeatureSecretScanning = "secretscanning"
	FeatureCodeScanning   = "codescanning"
	FeatureDependabot     = "dependabot"
)

// AllFeatures returns the known feature names in report order.
func AllFeatures() []string {
	return []string{FeatureSecretScanning, FeatureCodeScanning, FeatureDependabot}
}

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect the
	// report run, keep these in sync:
	// - CLI flags in internal/cli/report.go
	// - environment resolution in FromEnv below
	API     API
	Report  Report
	App     App
	Notify  Notify
	Runtime Runtime
}

type API struct {
	// Endpoint is the REST API base URL (GITHUB_API_URL / --api-url).
	// For GHES this is typically https://ghes.example.com/api/v3.
	Endpoint string

	// ServerURL is the web UI base URL (GITHUB_SERVER_URL / --server-url).
	// Used for the GHES all-repositories report in enterprise scope.
	ServerURL string

	// Token is the bearer token (GITHUB_PAT, falling back to GITHUB_TOKEN,
	// or --token). May be empty when App credentials are provided.
	Token string
}

type Report struct {
	// Scope selects the report breadth (GITHUB_REPORT_SCOPE / --scope).
	// Allowed values: repository, organization, enterprise.
	Scope Scope

	// ScopeName is the repository full name, organization name, or
	// enterprise slug (SCOPE_NAME, falling back to GITHUB_REPOSITORY).
	ScopeName string

	// Features are the requested feature names (FEATURES / --features).
	// Empty or "all" means every known feature. Unknown names are dropped
	// into DroppedFeatures by Validate rather than failing the run.
	Features []string

	// DroppedFeatures holds requested feature names that were not
	// recognized. Populated by Validate; callers should warn about these.
	DroppedFeatures []string

	// OutDir is the directory CSV files are written to (--out-dir).
	OutDir string
}

// App carries optional GitHub App installation credentials. When AppID is
// set these take precedence over API.Token.
type App struct {
	AppID          int64
	InstallationID int64

	// PrivateKey is the PEM-encoded App private key
	// (GITHUB_APP_PRIVATE_KEY).
	PrivateKey string
}

type Notify struct {
	// SlackWebhookURL, when set, receives a run summary message
	// (SLACK_WEBHOOK_URL).
	SlackWebhookURL string
}

type Runtime struct {
	// Concurrency bounds parallel per-repository API calls (--concurrency).
	// Must be >= 1.
	Concurrency int

	// Timeout is the global deadline for the run (--timeout). Must be > 0.
	Timeout time.Duration

	// Verbose enables per-request HTTP logging on stderr.
	Verbose bool
}

func New() *Config {
	return &Config{
		API: API{
			Endpoint:  "https://api.github.com",
			ServerURL: "https://github.com",
		},
		Report: Report{
			Scope:  ScopeRepository,
			OutDir: ".",
		},
		Runtime: Runtime{
			Concurrency: 5,
			Timeout:     30 * time.Minute,
		},
	}
}

// FromEnv builds a Config from defaults overlaid with environment variables.
// lookup is typically os.Getenv; it is injected so tests don't have to
// mutate the process environment.
func FromEnv(lookup func(string) string) *Config {
	cfg := New()

	if v := strings.TrimSpace(lookup(flags.EnvAPIURL)); v != "" {
		cfg.API.Endpoint = v
	}
	if v := strings.TrimSpace(lookup(flags.EnvServerURL)); v != "" {
		cfg.API.ServerURL = v
	}
	if v := lookup(flags.EnvPAT); v != "" {
		cfg.API.Token = v
	} else {
		cfg.API.Token = lookup(flags.EnvToken)
	}
	if v := strings.TrimSpace(lookup(flags.EnvReportScope)); v != "" {
		cfg.Report.Scope = Scope(v)
	}
	if v := strings.TrimSpace(lookup(flags.EnvScopeName)); v != "" {
		cfg.Report.ScopeName = v
	} else {
		cfg.Report.ScopeName = strings.TrimSpace(lookup(flags.EnvRepository))
	}
	if v := strings.TrimSpace(lookup(flags.EnvFeatures)); v != "" {
		cfg.Report.Features = []string{v}
	}

	if v := strings.TrimSpace(lookup(flags.EnvAppID)); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.App.AppID = id
		}
	}
	if v := strings.TrimSpace(lookup(flags.EnvAppInstallationID)); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.App.InstallationID = id
		}
	}
	cfg.App.PrivateKey = lookup(flags.EnvAppPrivateKey)

	cfg.Notify.SlackWebhookURL = strings.TrimSpace(lookup(flags.EnvSlackWebhookURL))

	return cfg
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Report.Features = splitCommaList(c.Report.Features)

	// Scope validation
	c.Report.Scope = Scope(normalizeEnumValue(string(c.Report.Scope)))
	if c.Report.Scope == "" {
		c.Report.Scope = ScopeRepository
	}
	switch c.Report.Scope {
	case ScopeRepository, ScopeOrganization, ScopeEnterprise:
	default:
		return fmt.Errorf("invalid report scope: %s (must be one of: repository, organization, enterprise)", c.Report.Scope)
	}

	if strings.TrimSpace(c.Report.ScopeName) == "" {
		return fmt.Errorf("scope name is required (set SCOPE_NAME, GITHUB_REPOSITORY, or --%s)", flags.FlagScopeName)
	}
	if c.Report.Scope == ScopeRepository && !strings.Contains(c.Report.ScopeName, "/") {
		return fmt.Errorf("repository scope requires an OWNER/REPO scope name, got %q", c.Report.ScopeName)
	}

	// Feature validation: unknown names are dropped, not fatal.
	c.Report.Features, c.Report.DroppedFeatures = resolveFeatures(c.Report.Features)
	if len(c.Report.Features) == 0 {
		return fmt.Errorf("no valid features requested (valid features are: %s)", strings.Join(AllFeatures(), ", "))
	}

	if c.Report.OutDir == "" {
		c.Report.OutDir = "."
	}

	// API validation
	c.API.Endpoint = strings.TrimRight(strings.TrimSpace(c.API.Endpoint), "/")
	c.API.ServerURL = strings.TrimRight(strings.TrimSpace(c.API.ServerURL), "/")
	if c.API.Endpoint == "" {
		return fmt.Errorf("API endpoint must not be empty")
	}

	// App credential validation: all-or-nothing.
	if c.App.AppID != 0 || c.App.InstallationID != 0 || c.App.PrivateKey != "" {
		if c.App.AppID == 0 || c.App.InstallationID == 0 || c.App.PrivateKey == "" {
			return fmt.Errorf("GitHub App auth requires %s, %s, and %s together",
				flags.EnvAppID, flags.EnvAppInstallationID, flags.EnvAppPrivateKey)
		}
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return fmt.Errorf("--%s must be >= 1", flags.FlagConcurrency)
	}
	if c.Runtime.Timeout <= 0 {
		return fmt.Errorf("--%s must be > 0", flags.FlagTimeout)
	}

	return nil
}

// UseAppAuth reports whether GitHub App installation credentials are
// configured. Validate guarantees the three fields are set together.
func (c *Config) UseAppAuth() bool {
	return c.App.AppID != 0
}

// resolveFeatures normalizes requested feature names against the known set.
// "all" (or an empty request) expands to every feature. Unknown names are
// returned separately so callers can warn without aborting.
func resolveFeatures(requested []string) (valid []string, dropped []string) {
	if len(requested) == 0 {
		return AllFeatures(), nil
	}

	known := make(map[string]bool, len(AllFeatures()))
	for _, f := range AllFeatures() {
		known[f] = true
	}

	seen := make(map[string]bool)
	for _, raw := range requested {
		f := normalizeEnumValue(raw)
		if f == "all" {
			return AllFeatures(), dropped
		}
		if !known[f] {
			dropped = append(dropped, raw)
			continue
		}
		if !seen[f] {
			seen[f] = true
			valid = append(valid, f)
		}
	}

	// Preserve the canonical feature order regardless of request order so
	// every scope reports features identically.
	ordered := make([]string, 0, len(valid))
	for _, f := range AllFeatures() {
		if seen[f] {
			ordered = append(ordered, f)
		}
	}
	return ordered, dropped
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
