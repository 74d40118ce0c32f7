package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ghasreport/internal/features"
)

var featuresListQuiet bool

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List supported security features",
	Long: `Discover which security features this build can report on.

Features are fetched during report runs (see "ghasreport report --help").

Examples:
  # List all supported features
  ghasreport features list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var featuresListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported features",
	Long: `List the security features registered in this build, in the order they
are reported.

Examples:
  ghasreport features list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, f := range features.List() {
			if featuresListQuiet {
				fmt.Fprintln(cmd.OutOrStdout(), f.Key())
			} else {
				printFeature(cmd.OutOrStdout(), f)
			}
		}
		return nil
	},
}

func printFeature(w io.Writer, f features.Fetcher) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%s\n", f.Key())
	fmt.Fprintf(w, "  %s\n", f.Title())
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featuresCmd.AddCommand(featuresListCmd)
	featuresListCmd.Flags().BoolVarP(&featuresListQuiet, "quiet", "q", false, "Only print feature names")
}
