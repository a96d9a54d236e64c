package viewmodel

import (
	"sync"

	"github.com/matheuskafuri/apod/internal/cache"
	"github.com/matheuskafuri/apod/internal/nasa"
)

// DefaultPageDays is how far back one "load more" reaches.
const DefaultPageDays = 10

// Pager walks a trailing date cursor backward one window at a time.
type Pager struct {
	mu     sync.Mutex
	days   int
	cursor nasa.Date
	today  func() nasa.Date
}

func NewPager(days int) *Pager {
	if days <= 0 {
		days = DefaultPageDays
	}
	return &Pager{days: days, today: nasa.ServiceToday}
}

// Next returns the window [start, end] that precedes what is already in view.
// The anchor is the oldest photo in view when that is older than the cursor,
// otherwise the cursor, or today when neither exists. ok is false once the
// anchor has reached the first APOD. The cursor only moves on Advance.
func (p *Pager) Next(photos []cache.Photo) (start, end nasa.Date, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	anchor := p.cursor
	if oldest, found := oldestDate(photos); found && (anchor.IsZero() || oldest.Before(anchor)) {
		anchor = oldest
	}
	if anchor.IsZero() {
		anchor = p.today()
	}
	if !anchor.After(nasa.FirstDate) {
		return nasa.Date{}, nasa.Date{}, false
	}

	start = anchor.AddDays(-p.days)
	if start.Before(nasa.FirstDate) {
		start = nasa.FirstDate
	}
	return start, anchor, true
}

// Advance records that the window starting at start was downloaded, so the
// next window continues below it even when it held no images.
func (p *Pager) Advance(start nasa.Date) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cursor.IsZero() || start.Before(p.cursor) {
		p.cursor = start
	}
}

func oldestDate(photos []cache.Photo) (nasa.Date, bool) {
	var oldest nasa.Date
	for _, ph := range photos {
		d, err := nasa.ParseDate(ph.Date)
		if err != nil {
			continue
		}
		if oldest.IsZero() || d.Before(oldest) {
			oldest = d
		}
	}
	return oldest, !oldest.IsZero()
}
