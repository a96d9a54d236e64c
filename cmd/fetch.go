package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/apod/internal/nasa"
	"github.com/matheuskafuri/apod/internal/repository"
)

var (
	flagFetchDate  string
	flagFetchStart string
	flagFetchEnd   string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download pictures into the local cache",
	Long: `Download pictures without opening the TUI.

With no flags, today's picture is downloaded. --date fetches a single day,
--start fetches everything from that day until today, and --start with --end
fetches a range. Dates are YYYY-MM-DD or a lookback such as 30d.`,
	Example: `  apod fetch
  apod fetch --date 2024-03-10
  apod fetch --start 30d
  apod fetch --start 2024-01-01 --end 2024-01-31`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := planFetch(flagFetchDate, flagFetchStart, flagFetchEnd, nasa.ServiceToday())
		if err != nil {
			return err
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		e.log.Info("fetch", "plan", plan.String())
		return drain(cmd, plan.run(cmd.Context(), e.repo))
	},
}

func init() {
	fetchCmd.Flags().StringVar(&flagFetchDate, "date", "", "fetch a single day")
	fetchCmd.Flags().StringVar(&flagFetchStart, "start", "", "fetch from this day")
	fetchCmd.Flags().StringVar(&flagFetchEnd, "end", "", "fetch until this day (requires --start)")
	fetchCmd.MarkFlagsMutuallyExclusive("date", "start")
	fetchCmd.MarkFlagsMutuallyExclusive("date", "end")
}

type fetchKind int

const (
	fetchToday fetchKind = iota
	fetchDay
	fetchSince
	fetchBetween
)

type fetchPlan struct {
	kind       fetchKind
	start, end nasa.Date
}

func (p fetchPlan) String() string {
	switch p.kind {
	case fetchDay:
		return "day " + p.start.String()
	case fetchSince:
		return "since " + p.start.String()
	case fetchBetween:
		return p.start.String() + ".." + p.end.String()
	default:
		return "today"
	}
}

func (p fetchPlan) run(ctx context.Context, repo *repository.Repository) <-chan repository.PhotosResult {
	switch p.kind {
	case fetchDay:
		return repo.DownloadPhotoOfDay(ctx, p.start)
	case fetchSince:
		return repo.DownloadPhotosSince(ctx, p.start)
	case fetchBetween:
		return repo.DownloadPhotosBetween(ctx, p.start, p.end)
	default:
		return repo.DownloadPhotoOfToday(ctx)
	}
}

func planFetch(date, start, end string, today nasa.Date) (fetchPlan, error) {
	switch {
	case date != "":
		d, err := resolveDate(date, today)
		if err != nil {
			return fetchPlan{}, err
		}
		return checkedPlan(fetchPlan{kind: fetchDay, start: d}, today)
	case end != "" && start == "":
		return fetchPlan{}, errors.New("--end requires --start")
	case start != "":
		s, err := resolveDate(start, today)
		if err != nil {
			return fetchPlan{}, err
		}
		if end == "" {
			return checkedPlan(fetchPlan{kind: fetchSince, start: s}, today)
		}
		e, err := resolveDate(end, today)
		if err != nil {
			return fetchPlan{}, err
		}
		if e.Before(s) {
			return fetchPlan{}, fmt.Errorf("--end %s is before --start %s", e, s)
		}
		return checkedPlan(fetchPlan{kind: fetchBetween, start: s, end: e}, today)
	default:
		return fetchPlan{kind: fetchToday}, nil
	}
}

func checkedPlan(p fetchPlan, today nasa.Date) (fetchPlan, error) {
	if p.start.Before(nasa.FirstDate) {
		return fetchPlan{}, fmt.Errorf("%s is before the first picture (%s)", p.start, nasa.FirstDate)
	}
	if p.start.After(today) {
		return fetchPlan{}, fmt.Errorf("%s is in the future", p.start)
	}
	return p, nil
}

// drain prints each result and fails if any step reported an error.
func drain(cmd *cobra.Command, results <-chan repository.PhotosResult) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var failed []string
	for res := range results {
		switch {
		case res.IsLoading():
			fmt.Fprintln(errOut, "Fetching...")
		case res.IsError():
			fmt.Fprintf(errOut, "  [error] %s\n", res.Message)
			failed = append(failed, res.Message)
		case res.IsSuccess():
			images := 0
			for _, p := range res.Data {
				if p.IsImage() {
					images++
				}
			}
			fmt.Fprintf(out, "Cache holds %d record(s), %d image(s).\n", len(res.Data), images)
		}
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("fetch failed: %s", failed[0])
	}
	return nil
}
