package nasa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/matheuskafuri/apod/internal/cache"
	"golang.org/x/sync/singleflight"
)

const DefaultBaseURL = "https://api.nasa.gov/planetary/apod"

// maxBodySize bounds a response body. The whole archive since 1995 is under
// 20 MiB.
const maxBodySize = 64 << 20

var (
	// ErrNoPhoto is returned when a single-photo query comes back empty.
	ErrNoPhoto = errors.New("there was no photo in the response")
	// ErrResponseTooLarge is returned when a body exceeds the size limit.
	ErrResponseTooLarge = errors.New("apod response too large")
)

// Fetcher queries the Astronomy Picture of the Day API.
type Fetcher interface {
	PhotoOfToday(ctx context.Context) (cache.Photo, error)
	PhotoOfDate(ctx context.Context, date Date) (cache.Photo, error)
	PhotosSince(ctx context.Context, start Date) ([]cache.Photo, error)
	PhotosBetween(ctx context.Context, start, end Date) ([]cache.Photo, error)
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apod API %d: %s", e.StatusCode, e.Message)
}

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	baseURL  string
	http     *http.Client
	group    singleflight.Group
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time
	maxBody  int64
}

func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var hc http.Client
	if opts.HTTPClient != nil {
		hc = *opts.HTTPClient
	}
	if opts.Timeout > 0 {
		hc.Timeout = opts.Timeout
	} else if hc.Timeout == 0 {
		hc.Timeout = 30 * time.Second
	}
	if opts.APIKey != "" {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = &apiKeyTransport{key: opts.APIKey, base: base}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  baseURL,
		http:     &hc,
		validate: validator.New(),
		log:      logger,
		now:      time.Now,
		maxBody:  maxBodySize,
	}
}

// apiKeyTransport appends the static api_key query parameter to every request.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	q := r.URL.Query()
	q.Set("api_key", t.key)
	r.URL.RawQuery = q.Encode()
	return t.base.RoundTrip(r)
}

type photoRecord struct {
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Title          string `json:"title"`
	MediaType      string `json:"media_type" validate:"required"`
	Explanation    string `json:"explanation"`
	ServiceVersion string `json:"service_version"`
	URL            string `json:"url"`
	HDURL          string `json:"hdurl"`
	Copyright      string `json:"copyright"`
}

func (r photoRecord) toPhoto(fetchedAt time.Time) cache.Photo {
	return cache.Photo{
		Date:           r.Date,
		Title:          r.Title,
		MediaType:      r.MediaType,
		Explanation:    r.Explanation,
		ServiceVersion: r.ServiceVersion,
		URL:            r.URL,
		HDURL:          r.HDURL,
		Copyright:      strings.TrimSpace(r.Copyright),
		FetchedAt:      fetchedAt,
	}
}

func (c *Client) PhotoOfToday(ctx context.Context) (cache.Photo, error) {
	return c.single(ctx, url.Values{})
}

func (c *Client) PhotoOfDate(ctx context.Context, date Date) (cache.Photo, error) {
	return c.single(ctx, url.Values{"date": {date.String()}})
}

func (c *Client) PhotosSince(ctx context.Context, start Date) ([]cache.Photo, error) {
	return c.list(ctx, url.Values{"start_date": {start.String()}})
}

func (c *Client) PhotosBetween(ctx context.Context, start, end Date) ([]cache.Photo, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return c.list(ctx, url.Values{
		"start_date": {start.String()},
		"end_date":   {end.String()},
	})
}

func (c *Client) single(ctx context.Context, q url.Values) (cache.Photo, error) {
	body, err := c.get(ctx, q)
	if err != nil {
		return cache.Photo{}, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return cache.Photo{}, ErrNoPhoto
	}

	var rec photoRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return cache.Photo{}, fmt.Errorf("decoding photo: %w", err)
	}
	if err := c.validate.Struct(rec); err != nil {
		return cache.Photo{}, fmt.Errorf("invalid photo record: %w", err)
	}
	return rec.toPhoto(c.now()), nil
}

func (c *Client) list(ctx context.Context, q url.Values) ([]cache.Photo, error) {
	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}

	var recs []photoRecord
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("decoding photos: %w", err)
	}

	now := c.now()
	photos := make([]cache.Photo, 0, len(recs))
	for _, r := range recs {
		if err := c.validate.Struct(r); err != nil {
			c.log.Warn("skipping invalid photo record", "date", r.Date, "error", err)
			continue
		}
		photos = append(photos, r.toPhoto(now))
	}
	return photos, nil
}

// get returns the raw body for a query. Concurrent identical queries share one
// request; each caller decodes its own copy of the result.
func (c *Client) get(ctx context.Context, q url.Values) ([]byte, error) {
	key := q.Encode()
	ch := c.group.DoChan(key, func() (interface{}, error) {
		// Detached so one caller giving up does not fail the others.
		return c.fetch(context.WithoutCancel(ctx), q)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug("singleflight: shared apod fetch", "query", key)
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) fetch(ctx context.Context, q url.Values) ([]byte, error) {
	u := c.baseURL
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apod request: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("apod response",
		"query", q.Encode(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"ratelimit_remaining", resp.Header.Get("X-RateLimit-Remaining"),
	)

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, b)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: over %d bytes, narrow the date range", ErrResponseTooLarge, c.maxBody)
	}
	return body, nil
}

// errorMessage pulls a human readable message out of an error body. The APOD
// service answers {"code":400,"msg":"..."}; the api.nasa.gov gateway answers
// {"error":{"code":"...","message":"..."}}.
func errorMessage(status int, body []byte) string {
	var parsed struct {
		Msg   string `json:"msg"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Msg != "" {
			return parsed.Msg
		}
		if parsed.Error != nil && parsed.Error.Message != "" {
			return parsed.Error.Message
		}
	}
	return http.StatusText(status)
}
