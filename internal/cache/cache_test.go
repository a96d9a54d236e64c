package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func samplePhotos() []Photo {
	now := time.Now()
	return []Photo{
		{Date: "2024-03-10", Title: "Orion Nebula", MediaType: "image", Explanation: "A stellar nursery.", URL: "https://apod.nasa.gov/a.jpg", HDURL: "https://apod.nasa.gov/a_hd.jpg", Copyright: "Jane Doe", FetchedAt: now},
		{Date: "2024-03-09", Title: "Eclipse Timelapse", MediaType: "video", Explanation: "The moon passes.", URL: "https://youtube.com/embed/x", FetchedAt: now},
		{Date: "2024-03-08", Title: "Andromeda", MediaType: "image", Explanation: "Our nearest large galaxy, seen in search of dust lanes.", URL: "https://apod.nasa.gov/c.jpg", ServiceVersion: "v1", FetchedAt: now},
	}
}

func TestUpsertAndAll(t *testing.T) {
	db := testDB(t)

	// Insert out of order to check read-back ordering.
	photos := samplePhotos()
	if err := db.UpsertPhotos([]Photo{photos[2], photos[0], photos[1]}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.AllPhotos()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 photos, got %d", len(got))
	}
	want := []string{"2024-03-10", "2024-03-09", "2024-03-08"}
	for i, d := range want {
		if got[i].Date != d {
			t.Errorf("position %d: expected %s, got %s", i, d, got[i].Date)
		}
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	db := testDB(t)
	photos := samplePhotos()

	if err := db.UpsertPhotos(photos); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	replacement := photos[0]
	replacement.Title = "Orion Nebula (reprocessed)"
	replacement.HDURL = ""
	replacement.Copyright = ""
	if err := db.UpsertPhoto(replacement); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := db.AllPhotos()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 photos after upsert, got %d", len(got))
	}
	if got[0].Title != "Orion Nebula (reprocessed)" {
		t.Errorf("expected replaced title, got %q", got[0].Title)
	}
	if got[0].HDURL != "" || got[0].Copyright != "" {
		t.Errorf("expected optional fields cleared, got hd=%q copyright=%q", got[0].HDURL, got[0].Copyright)
	}
}

func TestOptionalFieldsRoundTrip(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertPhotos(samplePhotos()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.AllPhotos()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	byDate := map[string]Photo{}
	for _, p := range got {
		byDate[p.Date] = p
	}
	if p := byDate["2024-03-10"]; p.HDURL != "https://apod.nasa.gov/a_hd.jpg" || p.Copyright != "Jane Doe" {
		t.Errorf("unexpected optional fields: %+v", p)
	}
	if p := byDate["2024-03-09"]; p.HDURL != "" || p.Copyright != "" || p.ServiceVersion != "" {
		t.Errorf("expected empty optional fields, got %+v", p)
	}
	if p := byDate["2024-03-08"]; p.ServiceVersion != "v1" {
		t.Errorf("expected service version v1, got %q", p.ServiceVersion)
	}
}

func TestUpsertEmptyIsNoop(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertPhotos(nil); err != nil {
		t.Fatalf("upsert nil: %v", err)
	}
	got, err := db.AllPhotos()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected 0 photos, got %d", len(got))
	}
}

func TestQueryRange(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertPhotos(samplePhotos()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetPhotos(QueryOpts{Since: "2024-03-09", Until: "2024-03-10"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 photos in range, got %d", len(got))
	}
}

func TestQueryMediaType(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertPhotos(samplePhotos()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetPhotos(QueryOpts{MediaType: MediaImage})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 images, got %d", len(got))
	}
	for _, p := range got {
		if !p.IsImage() {
			t.Errorf("expected only images, got %s", p.MediaType)
		}
	}
}

func TestQuerySearch(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertPhotos(samplePhotos()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetPhotos(QueryOpts{Search: "search"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 photo matching 'search', got %d", len(got))
	}
	if len(got) > 0 && got[0].Date != "2024-03-08" {
		t.Errorf("expected 2024-03-08, got %s", got[0].Date)
	}
}

func TestQueryLimit(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertPhotos(samplePhotos()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetPhotos(QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 photo with limit, got %d", len(got))
	}
}

func TestNeedsRefresh(t *testing.T) {
	db := testDB(t)

	if !db.NeedsRefresh(1 * time.Hour) {
		t.Error("expected NeedsRefresh=true when no last_refresh set")
	}

	if err := db.SetLastRefresh(); err != nil {
		t.Fatalf("SetLastRefresh: %v", err)
	}

	if db.NeedsRefresh(1 * time.Hour) {
		t.Error("expected NeedsRefresh=false right after SetLastRefresh")
	}

	if !db.NeedsRefresh(0) {
		t.Error("expected NeedsRefresh=true with zero interval")
	}
}

func TestEmptyDB(t *testing.T) {
	db := testDB(t)

	got, err := db.AllPhotos()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected 0 photos in empty db, got %d", len(got))
	}
}

func TestPruneDeletesOlderPhotos(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertPhotos(samplePhotos()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	deleted, err := db.Prune("2024-03-09")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned, got %d", deleted)
	}

	got, err := db.AllPhotos()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 remaining photos, got %d", len(got))
	}
}

func TestPruneNothingToDelete(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertPhotos(samplePhotos()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	deleted, err := db.Prune("1995-06-16")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 pruned, got %d", deleted)
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := db.UpsertPhotos(samplePhotos()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	count, size, err := db.Stats(dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
	if size == 0 {
		t.Error("expected non-zero db size")
	}
}

func TestBestURL(t *testing.T) {
	p := Photo{URL: "https://a/sd.jpg"}
	if got := p.BestURL(); got != "https://a/sd.jpg" {
		t.Errorf("BestURL without hd = %q", got)
	}
	p.HDURL = "https://a/hd.jpg"
	if got := p.BestURL(); got != "https://a/hd.jpg" {
		t.Errorf("BestURL with hd = %q", got)
	}
}

func TestOpenCreatesDir(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "deep", "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("opening db in nested dir: %v", err)
	}
	db.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}
