package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Downloads and read-backs from concurrent view-model events share the file.
const busyTimeout = "?_pragma=busy_timeout(5000)"

type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath+busyTimeout)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+busyTimeout)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{readDB: readDB, writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS photos (
			date            TEXT PRIMARY KEY,
			title           TEXT NOT NULL,
			media_type      TEXT NOT NULL,
			explanation     TEXT NOT NULL DEFAULT '',
			service_version TEXT,
			url             TEXT NOT NULL DEFAULT '',
			hd_url          TEXT,
			copyright       TEXT,
			fetched_at      DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_photos_media_type ON photos(media_type);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func (c *Cache) UpsertPhoto(p Photo) error {
	return c.UpsertPhotos([]Photo{p})
}

// UpsertPhotos stores photos keyed by date. A row with the same date is
// replaced entirely.
func (c *Cache) UpsertPhotos(photos []Photo) error {
	if len(photos) == 0 {
		return nil
	}

	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO photos (date, title, media_type, explanation, service_version, url, hd_url, copyright, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			title = excluded.title,
			media_type = excluded.media_type,
			explanation = excluded.explanation,
			service_version = excluded.service_version,
			url = excluded.url,
			hd_url = excluded.hd_url,
			copyright = excluded.copyright,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range photos {
		fetched := p.FetchedAt
		if fetched.IsZero() {
			fetched = time.Now()
		}
		_, err := stmt.Exec(p.Date, p.Title, p.MediaType, p.Explanation,
			nullable(p.ServiceVersion), p.URL, nullable(p.HDURL), nullable(p.Copyright), fetched.UTC())
		if err != nil {
			return fmt.Errorf("upserting photo %s: %w", p.Date, err)
		}
	}

	return tx.Commit()
}

// AllPhotos returns every cached photo, newest date first.
func (c *Cache) AllPhotos() ([]Photo, error) {
	return c.queryPhotos("SELECT "+photoColumns+" FROM photos ORDER BY date DESC", nil)
}

func (c *Cache) GetPhotos(opts QueryOpts) ([]Photo, error) {
	var (
		where []string
		args  []interface{}
	)

	if opts.Since != "" {
		where = append(where, "date >= ?")
		args = append(args, opts.Since)
	}
	if opts.Until != "" {
		where = append(where, "date <= ?")
		args = append(args, opts.Until)
	}
	if opts.MediaType != "" {
		where = append(where, "media_type = ?")
		args = append(args, opts.MediaType)
	}
	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR explanation LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}

	query := "SELECT " + photoColumns + " FROM photos"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	return c.queryPhotos(query, args)
}

const photoColumns = "date, title, media_type, explanation, service_version, url, hd_url, copyright, fetched_at"

func (c *Cache) queryPhotos(query string, args []interface{}) ([]Photo, error) {
	rows, err := c.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying photos: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var (
			p                             Photo
			version, hdURL, copyrightText sql.NullString
		)
		if err := rows.Scan(&p.Date, &p.Title, &p.MediaType, &p.Explanation, &version, &p.URL, &hdURL, &copyrightText, &p.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning photo: %w", err)
		}
		p.ServiceVersion = version.String
		p.HDURL = hdURL.String
		p.Copyright = copyrightText.String
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (c *Cache) NeedsRefresh(interval time.Duration) bool {
	value, err := c.getMeta("last_refresh")
	if err != nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return true
	}
	return time.Since(t) > interval
}

func (c *Cache) SetLastRefresh() error {
	return c.setMeta("last_refresh", time.Now().Format(time.RFC3339))
}

// Prune deletes photos dated strictly before the given YYYY-MM-DD day.
func (c *Cache) Prune(before string) (int64, error) {
	res, err := c.writeDB.Exec("DELETE FROM photos WHERE date < ?", before)
	if err != nil {
		return 0, fmt.Errorf("deleting photos: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := c.writeDB.Exec("VACUUM"); err != nil {
			return n, fmt.Errorf("vacuuming: %w", err)
		}
	}
	return n, nil
}

func (c *Cache) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM photos").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting photos: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return count, info.Size(), nil
}

func (c *Cache) getMeta(key string) (string, error) {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	return value, err
}

func (c *Cache) setMeta(key, value string) error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
