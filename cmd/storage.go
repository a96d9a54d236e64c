package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/apod/internal/config"
	"github.com/matheuskafuri/apod/internal/nasa"
)

var flagPruneBefore string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old pictures from the local cache",
	Long: `Delete cached pictures dated before --before and reclaim disk space.

--before takes a date (YYYY-MM-DD) or a lookback such as 365d.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagPruneBefore == "" {
			return errors.New("--before is required")
		}
		before, err := resolveDate(flagPruneBefore, nasa.Today())
		if err != nil {
			return fmt.Errorf("invalid --before value: %w", err)
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		deleted, err := e.db.Prune(before.String())
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d picture(s) dated before %s.\n", deleted, before)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		dbPath := config.CachePath()
		count, size, err := e.db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Cache: %s\n", dbPath)
		fmt.Printf("Pictures: %d\n", count)
		fmt.Printf("Size: %s\n", formatBytes(size))
		if e.db.NeedsRefresh(e.cfg.RefreshDuration()) {
			fmt.Printf("Last download: more than %s ago\n", formatDuration(e.cfg.RefreshDuration()))
		}
		fmt.Printf("Log: %s\n", config.LogPath())
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneBefore, "before", "", "delete pictures dated before this day (e.g., 2020-01-01, 365d)")
}

func formatDuration(d interface{ Hours() float64 }) string {
	h := d.Hours()
	days := int(h / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(h))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
