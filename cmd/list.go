package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/apod/internal/cache"
	"github.com/matheuskafuri/apod/internal/nasa"
)

var (
	flagListLimit    int
	flagListSince    string
	flagListSearch   string
	flagListAllMedia bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print cached pictures, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		opts := cache.QueryOpts{
			Search: flagListSearch,
			Limit:  flagListLimit,
		}
		if !flagListAllMedia {
			opts.MediaType = cache.MediaImage
		}
		if flagListSince != "" {
			since, err := resolveDate(flagListSince, nasa.Today())
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			opts.Since = since.String()
		}

		photos, err := e.db.GetPhotos(opts)
		if err != nil {
			return fmt.Errorf("reading cache: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(photos) == 0 {
			fmt.Fprintln(out, "No cached pictures. Run `apod fetch` first.")
			return nil
		}
		for _, p := range photos {
			fmt.Fprintln(out, formatPhotoLine(p))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&flagListLimit, "limit", 20, "maximum number of pictures (0 for all)")
	listCmd.Flags().StringVar(&flagListSince, "since", "", "only pictures from this day on (YYYY-MM-DD or e.g. 30d)")
	listCmd.Flags().StringVar(&flagListSearch, "search", "", "match title or explanation")
	listCmd.Flags().BoolVar(&flagListAllMedia, "all-media", false, "include videos and other media")
}

func formatPhotoLine(p cache.Photo) string {
	line := fmt.Sprintf("%s  %s", p.Date, p.Title)
	if !p.IsImage() {
		line += " [" + p.MediaType + "]"
	}
	if p.Copyright != "" {
		line += " (© " + p.Copyright + ")"
	}
	return line
}
