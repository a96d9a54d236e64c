package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func releaseServer(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestCheckURL(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		current string
		want    string
	}{
		{"newer release", 200, `{"tag_name":"v1.2.0"}`, "v1.1.0", "1.2.0"},
		{"same version", 200, `{"tag_name":"v1.1.0"}`, "1.1.0", ""},
		{"dev build", 200, `{"tag_name":"v1.2.0"}`, "dev", ""},
		{"server error", 500, `{}`, "v1.1.0", ""},
		{"bad json", 200, `{`, "v1.1.0", ""},
		{"empty tag", 200, `{"tag_name":""}`, "v1.1.0", ""},
		{"older release", 200, `{"tag_name":"v1.0.9"}`, "v1.1.0", ""},
		{"minor beats patch", 200, `{"tag_name":"v1.10.0"}`, "v1.9.3", "1.10.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := releaseServer(t, tt.status, tt.body)
			res := CheckURL(context.Background(), url, tt.current)
			got := ""
			if res != nil {
				got = res.LatestVersion
			}
			if got != tt.want {
				t.Errorf("LatestVersion = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"1.2.0", "1.1.9", true},
		{"1.2", "1.2.0", false},
		{"2.0.0-rc1", "1.9.0", true},
		{"1.0.0", "1.0.1", false},
		{"nightly", "1.0.0", true},
		{"", "1.0.0", false},
	}
	for _, tt := range tests {
		if got := newer(tt.latest, tt.current); got != tt.want {
			t.Errorf("newer(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
		}
	}
}
