package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/apod/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagRefresh bool
	flagConfig  string
	flagDays    int
)

var rootCmd = &cobra.Command{
	Use:   "apod",
	Short: "Browse NASA's Astronomy Picture of the Day in the terminal",
	Long: `apod downloads NASA's Astronomy Picture of the Day, keeps it in a local cache
and lets you browse the archive one page of days at a time.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env file if present (ignore errors)
		_ = godotenv.Load()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd.Context(), false)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "download today's picture before launching")
	rootCmd.Flags().IntVar(&flagDays, "days", 0, "days loaded per page (default from config)")
	browseCmd.Flags().AddFlagSet(rootCmd.Flags())

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var flagCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("apod %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return
		}
		if res := update.Check(cmd.Context(), version); res != nil {
			fmt.Printf("Update available: v%s\n", res.LatestVersion)
		} else {
			fmt.Println("You are up to date.")
		}
	},
}

// Root returns the root command for callers that run it themselves.
func Root() *cobra.Command {
	return rootCmd
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
