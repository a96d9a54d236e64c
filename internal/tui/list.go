package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/apod/internal/cache"
	"github.com/matheuskafuri/apod/internal/nasa"
)

// relativeDay describes an APOD date relative to today.
func relativeDay(date string, today nasa.Date) string {
	d, err := nasa.ParseDate(date)
	if err != nil {
		return date
	}
	days := int(today.Time().Sub(d.Time()) / (24 * time.Hour))
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return d.Time().Format("Jan 2, 2006")
	}
}

func renderListItem(p cache.Photo, selected bool, width int, today nasa.Date) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(p.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(p.Title, width-4))
	}

	meta := "  " + itemDateStyle.Render(relativeDay(p.Date, today))
	if p.Copyright != "" {
		meta += " " + itemCreditStyle.Render("· "+truncateStr(p.Copyright, width-20))
	}

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(photos []cache.Photo, cursor int, height int, width int, today nasa.Date) string {
	if len(photos) == 0 {
		return lipglossCenter("No pictures yet", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(photos) {
		end = len(photos)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(photos[i], i == cursor, width, today))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// filterPhotos keeps photos whose title contains query, ignoring case.
func filterPhotos(photos []cache.Photo, query string) []cache.Photo {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return photos
	}
	var out []cache.Photo
	for _, p := range photos {
		if strings.Contains(strings.ToLower(p.Title), query) {
			out = append(out, p)
		}
	}
	return out
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
