package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/apod/internal/cache"
	"github.com/matheuskafuri/apod/internal/nasa"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSince(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseSince(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSince(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func mustDate(t *testing.T, s string) nasa.Date {
	t.Helper()
	d, err := nasa.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestResolveDate(t *testing.T) {
	today := mustDate(t, "2024-03-10")
	tests := []struct {
		input string
		want  string
		err   bool
	}{
		{"2024-01-31", "2024-01-31", false},
		{"10d", "2024-02-29", false},
		{"48h", "2024-03-08", false},
		{"last week", "", true},
	}
	for _, tt := range tests {
		got, err := resolveDate(tt.input, today)
		if tt.err {
			if err == nil {
				t.Errorf("resolveDate(%q): expected error, got %s", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("resolveDate(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("resolveDate(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestPlanFetch(t *testing.T) {
	today := mustDate(t, "2024-03-10")
	tests := []struct {
		name             string
		date, start, end string
		want             string
		wantErr          string
	}{
		{name: "no flags", want: "today"},
		{name: "single day", date: "2024-03-01", want: "day 2024-03-01"},
		{name: "since", start: "7d", want: "since 2024-03-03"},
		{name: "range", start: "2024-01-01", end: "2024-01-31", want: "2024-01-01..2024-01-31"},
		{name: "end without start", end: "2024-01-31", wantErr: "requires --start"},
		{name: "inverted range", start: "2024-02-01", end: "2024-01-01", wantErr: "before --start"},
		{name: "before first picture", date: "1990-01-01", wantErr: "first picture"},
		{name: "future", start: "2024-04-01", wantErr: "future"},
		{name: "bad date", date: "tomorrow", wantErr: "invalid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planFetch(tt.date, tt.start, tt.end, today)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.String() != tt.want {
				t.Errorf("plan = %s, want %s", plan, tt.want)
			}
		})
	}
}

func TestFormatPhotoLine(t *testing.T) {
	tests := []struct {
		photo cache.Photo
		want  string
	}{
		{cache.Photo{Date: "2024-03-10", Title: "Orion", MediaType: "image"}, "2024-03-10  Orion"},
		{cache.Photo{Date: "2024-03-09", Title: "Eclipse", MediaType: "video", Copyright: "Jane Doe"}, "2024-03-09  Eclipse [video] (© Jane Doe)"},
	}
	for _, tt := range tests {
		if got := formatPhotoLine(tt.photo); got != tt.want {
			t.Errorf("formatPhotoLine = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"browse", "fetch", "list", "prune", "stats", "version"}
	for _, name := range want {
		c, _, err := Root().Find([]string{name})
		if err != nil || c.Name() != name {
			t.Errorf("expected %s subcommand, got %v (%v)", name, c, err)
		}
	}
}
