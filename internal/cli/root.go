package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// verbose is bound to the persistent --verbose flag and copied into the
// resolved config by the report command.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ghasreport",
	Short: "Report GitHub security alerts as CSV files",
	Long: `ghasreport fetches GitHub security alerts and writes them to CSV files,
one file per feature, with each alert row annotated with the admins of the
repository it belongs to.

Supported features: secret scanning, code scanning, and Dependabot alerts.
Supported scopes: a single repository, an organization, or an enterprise.

Examples:
	# Show available commands and global flags
	ghasreport --help

	# Report secret scanning alerts for one repository
	ghasreport report --scope repository --scope-name octo/widgets --features secretscanning

	# Report everything for an organization
	ghasreport report --scope organization --scope-name octo-org

	# List supported features
	ghasreport features list

	# Print build info
	ghasreport version`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging (prints every GitHub API call)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
