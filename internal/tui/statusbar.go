package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type statusInfo struct {
	shown, total int
	oldest       string
	query        string
	searching    bool
	loading      bool
	toast        string
}

func renderStatusBar(s statusInfo, width int) string {
	left := fmt.Sprintf(" %d pictures", s.total)
	if s.query != "" {
		left = fmt.Sprintf(" %d of %d pictures · %q", s.shown, s.total, s.query)
	}
	if s.oldest != "" {
		left += " · back to " + s.oldest
	}
	if s.loading {
		left += " (loading...)"
	}

	right := " m more  t today  / search  ? help  q quit "
	if s.searching {
		right = " esc cancel  enter search "
	}

	if s.toast != "" {
		left = " " + toastStyle.Render(s.toast)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(width).Render(fmt.Sprintf("%*s", gap, "") + right)
}
