package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/apod/internal/cache"
	"github.com/matheuskafuri/apod/internal/nasa"
)

func renderPreview(photo *cache.Photo, width, height, scroll int) string {
	if photo == nil {
		return lipglossCenter("Select a picture", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(photo.Title)

	meta := []string{displayDate(photo.Date), photo.MediaType}
	if photo.Copyright != "" {
		meta = append(meta, "© "+photo.Copyright)
	}
	byline := previewMetaStyle.Width(contentWidth).Render(strings.Join(meta, " · "))

	desc := photo.Explanation
	if desc == "" {
		desc = "(No explanation available)"
	}
	body := previewBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth))

	links := []string{"Image: " + photo.URL}
	if photo.HDURL != "" {
		links = append(links, "HD:    "+photo.HDURL)
	}
	link := previewLinkStyle.Width(contentWidth).Render(strings.Join(links, "\n"))

	content := lipgloss.JoinVertical(lipgloss.Left, title, byline, "", body, "", link)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func displayDate(date string) string {
	d, err := nasa.ParseDate(date)
	if err != nil {
		return date
	}
	return d.Time().Format("Monday, Jan 2, 2006")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
