package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/apod/internal/cache"
)

var asciiLogo = []string{
	` █████╗ ██████╗  ██████╗ ██████╗ `,
	`██╔══██╗██╔══██╗██╔═══██╗██╔══██╗`,
	`███████║██████╔╝██║   ██║██║  ██║`,
	`██╔══██║██╔═══╝ ██║   ██║██║  ██║`,
	`██║  ██║██║     ╚██████╔╝██████╔╝`,
	`╚═╝  ╚═╝╚═╝      ╚═════╝ ╚═════╝ `,
}

func renderHomeScreen(width, height int, latest *cache.Photo, loading bool, updateVersion string) string {
	logoStyle := lipgloss.NewStyle().Foreground(colorAccent)
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorText)
	dimStyle := lipgloss.NewStyle().Foreground(colorDim)

	var lines []string

	for _, l := range asciiLogo {
		lines = append(lines, logoStyle.Render(l))
	}
	lines = append(lines, dimStyle.Render("Astronomy Picture of the Day"))
	lines = append(lines, "")

	switch {
	case latest != nil:
		lines = append(lines, labelStyle.Bold(true).Render(truncateStr(latest.Title, width-8)))
		lines = append(lines, dimStyle.Render(displayDate(latest.Date)))
	case loading:
		lines = append(lines, dimStyle.Render("Looking up today's picture..."))
	default:
		lines = append(lines, dimStyle.Render("No pictures cached yet"))
	}
	lines = append(lines, "")

	lines = append(lines, keyStyle.Render("[enter]")+"  "+labelStyle.Render("Browse pictures"))
	lines = append(lines, keyStyle.Render("[t]")+"      "+labelStyle.Render("Download today's picture"))
	lines = append(lines, keyStyle.Render("[q]")+"      "+labelStyle.Render("Quit"))

	if updateVersion != "" {
		lines = append(lines, "")
		lines = append(lines, logoStyle.Render("Update available: v"+updateVersion))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	contentHeight := strings.Count(content, "\n") + 1

	topPad := (height - contentHeight) / 3
	if topPad < 0 {
		topPad = 0
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}
