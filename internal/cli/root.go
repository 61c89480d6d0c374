package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagOrg         string
	flagHost        string
	flagStart       string
	flagEnd         string
	flagDays        int
	flagConcurrency int
	flagLabels      []string
	flagConfigFile  string
	flagFormat      string
	flagGroupBy     string
	flagNoCache     bool
	flagCacheTTL    string
	flagCacheDir    string
	flagNoProgress  bool
)

var rootCmd = &cobra.Command{
	Use:   "gha-cost",
	Short: "Estimate GitHub Actions usage and cost for an organization",
	Long: `gha-cost walks an organization's repositories, workflow runs, and jobs
over the GitHub REST API and reconstructs a GitHub.com-equivalent usage and
cost report, including self-hosted runners classified via label mappings.

Authentication comes from gh (run "gh auth login") or GH_TOKEN/GITHUB_TOKEN.`,
	SilenceUsage: true,
	RunE:         runReport,
}

// reportCmd is the explicit spelling of the default action, so both
// `gha-cost --org acme` and `gha-cost report --org acme` work.
var reportCmd = &cobra.Command{
	Use:          "report",
	Short:        "Generate the usage and cost report",
	SilenceUsage: true,
	RunE:         runReport,
}

func init() {
	addReportFlags(rootCmd.Flags())
	addReportFlags(reportCmd.Flags())
	rootCmd.AddCommand(reportCmd)

	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "GitHub Enterprise Server hostname")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "Cache directory (default per-user cache dir)")
}

func addReportFlags(f *pflag.FlagSet) {
	f.StringVarP(&flagOrg, "org", "o", "", "Organization to report on (required)")
	f.StringVar(&flagStart, "start", "", "Start date, YYYY-MM-DD")
	f.StringVar(&flagEnd, "end", "", "End date, YYYY-MM-DD")
	f.IntVar(&flagDays, "days", 0, "Trailing window in days when no dates are given (default 30)")
	f.IntVar(&flagConcurrency, "concurrency", 0, "Concurrent requests per tier (default 5)")
	f.StringArrayVarP(&flagLabels, "label", "l", nil, "Label mapping pattern:os, repeatable (e.g. 'runner-*:linux')")
	f.StringVar(&flagConfigFile, "config", "", "Path to a YAML config file")
	f.StringVarP(&flagFormat, "format", "f", "table", "Output format: table, json, or csv")
	f.StringVar(&flagGroupBy, "group-by", "day", "Period grouping: day, week, or month")
	f.BoolVar(&flagNoCache, "no-cache", false, "Bypass the fetch cache entirely")
	f.StringVar(&flagCacheTTL, "cache-ttl", "", "Max age of cached fetch results (default 1h)")
	f.BoolVar(&flagNoProgress, "no-progress", false, "Disable the live progress display")
}

// Execute runs the CLI and exits non-zero on any fatal error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
