package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/matheuskafuri/apod/internal/nasa"
	"github.com/matheuskafuri/apod/internal/tui"
	"github.com/matheuskafuri/apod/internal/viewmodel"
)

func runApp(ctx context.Context, browse bool) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	days := e.cfg.PageDays
	if flagDays > 0 {
		days = flagDays
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vm := viewmodel.New(e.repo, viewmodel.NewPager(days), e.log)
	refresh := flagRefresh || e.db.NeedsRefresh(e.cfg.RefreshDuration())
	e.log.Info("starting tui", "page_days", days, "refresh", refresh)

	err = tui.Run(ctx, tui.RunOpts{
		VM:         vm,
		Refresh:    refresh,
		BrowseMode: browse,
		Version:    version,
		PageDays:   days,
	})

	// Stop in-flight downloads before the cache closes
	cancel()
	vm.Wait()
	return err
}

// parseSince accepts a Go duration or a number of days like "7d".
func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

// resolveDate accepts YYYY-MM-DD or a lookback like "30d" relative to today.
func resolveDate(s string, today nasa.Date) (nasa.Date, error) {
	if d, err := nasa.ParseDate(s); err == nil {
		return d, nil
	}
	dur, err := parseSince(s)
	if err != nil {
		return nasa.Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or a lookback like 30d)", s)
	}
	return nasa.DateOf(today.Time().Add(-dur)), nil
}
