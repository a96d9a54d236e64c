package nasa

import (
	"fmt"
	"time"
)

// DateLayout is the day format the APOD API accepts and returns.
const DateLayout = "2006-01-02"

// FirstDate is the day of the first Astronomy Picture of the Day.
var FirstDate = Date{t: time.Date(1995, time.June, 16, 0, 0, 0, 0, time.UTC)}

// Date is a calendar day. The zero value means "no date".
type Date struct {
	t time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return Date{t: t}, nil
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	return DateOf(time.Now())
}

// serviceZone is where the APOD calendar turns over. The API rejects dates
// past the current day there.
var serviceZone = loadServiceZone()

func loadServiceZone() *time.Location {
	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		return loc
	}
	return time.FixedZone("EST", -5*60*60)
}

// ServiceToday is the newest day the API will answer for.
func ServiceToday() Date {
	return DateOf(time.Now().In(serviceZone))
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) IsZero() bool       { return d.t.IsZero() }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.t }
