package nasa

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		err   bool
	}{
		{"2024-03-10", false},
		{"1995-06-16", false},
		{"2024-3-10", true},
		{"2024-02-30", true},
		{"", true},
		{"yesterday", true},
	}
	for _, tt := range tests {
		d, err := ParseDate(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("ParseDate(%q): expected error, got %v", tt.input, d)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if d.String() != tt.input {
			t.Errorf("ParseDate(%q).String() = %q", tt.input, d.String())
		}
	}
}

func TestAddDays(t *testing.T) {
	d, _ := ParseDate("2024-03-05")
	tests := []struct {
		n    int
		want string
	}{
		{-10, "2024-02-24"},
		{-5, "2024-02-29"},
		{0, "2024-03-05"},
		{30, "2024-04-04"},
	}
	for _, tt := range tests {
		if got := d.AddDays(tt.n).String(); got != tt.want {
			t.Errorf("AddDays(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestDateOfDropsClock(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	ts := time.Date(2024, 3, 10, 23, 59, 0, 0, loc)
	if got := DateOf(ts).String(); got != "2024-03-10" {
		t.Errorf("DateOf = %s, want 2024-03-10", got)
	}
}

func TestZeroDate(t *testing.T) {
	var d Date
	if !d.IsZero() {
		t.Error("expected zero date")
	}
	if d.String() != "" {
		t.Errorf("zero date String() = %q, want empty", d.String())
	}
	if !d.AddDays(-10).IsZero() {
		t.Error("AddDays on zero date should stay zero")
	}
}

func TestCompare(t *testing.T) {
	a, _ := ParseDate("2024-03-01")
	b, _ := ParseDate("2024-03-02")
	if !a.Before(b) || b.Before(a) {
		t.Error("Before mismatch")
	}
	if !b.After(a) || a.After(b) {
		t.Error("After mismatch")
	}
	if !a.Equal(b.AddDays(-1)) {
		t.Error("Equal mismatch")
	}
	if FirstDate.String() != "1995-06-16" {
		t.Errorf("FirstDate = %s", FirstDate)
	}
}

func TestServiceTodayNeverAheadOfUTC(t *testing.T) {
	utc := DateOf(time.Now().UTC())
	got := ServiceToday()
	if got.After(utc) {
		t.Errorf("ServiceToday() = %s is after UTC day %s", got, utc)
	}
	if got.Before(utc.AddDays(-1)) {
		t.Errorf("ServiceToday() = %s is more than a day behind %s", got, utc)
	}
}
