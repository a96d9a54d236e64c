package cmd

import "github.com/spf13/cobra"

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the picture list directly",
	Long:  "Open apod straight into the two-pane picture browser, skipping the home screen.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd.Context(), true)
	},
}
