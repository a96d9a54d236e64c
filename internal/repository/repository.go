package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/matheuskafuri/apod/internal/cache"
	"github.com/matheuskafuri/apod/internal/nasa"
)

// Store is the part of the local cache the repository writes to and reads
// back from.
type Store interface {
	UpsertPhotos(photos []cache.Photo) error
	AllPhotos() ([]cache.Photo, error)
	SetLastRefresh() error
}

// PhotosResult carries the full cached list on success.
type PhotosResult = Result[[]cache.Photo]

type Repository struct {
	api   nasa.Fetcher
	store Store
	log   *slog.Logger
}

func New(api nasa.Fetcher, store Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{api: api, store: store, log: logger}
}

func (r *Repository) DownloadPhotoOfToday(ctx context.Context) <-chan PhotosResult {
	return r.download(ctx, "today", func(ctx context.Context) ([]cache.Photo, error) {
		p, err := r.api.PhotoOfToday(ctx)
		if err != nil {
			return nil, err
		}
		return []cache.Photo{p}, nil
	})
}

func (r *Repository) DownloadPhotoOfDay(ctx context.Context, date nasa.Date) <-chan PhotosResult {
	return r.download(ctx, "day "+date.String(), func(ctx context.Context) ([]cache.Photo, error) {
		p, err := r.api.PhotoOfDate(ctx, date)
		if err != nil {
			return nil, err
		}
		return []cache.Photo{p}, nil
	})
}

func (r *Repository) DownloadPhotosSince(ctx context.Context, start nasa.Date) <-chan PhotosResult {
	return r.download(ctx, "since "+start.String(), func(ctx context.Context) ([]cache.Photo, error) {
		return r.api.PhotosSince(ctx, start)
	})
}

func (r *Repository) DownloadPhotosBetween(ctx context.Context, start, end nasa.Date) <-chan PhotosResult {
	return r.download(ctx, "range "+start.String()+".."+end.String(), func(ctx context.Context) ([]cache.Photo, error) {
		return r.api.PhotosBetween(ctx, start, end)
	})
}

// FetchPhotosFromDatabase emits Loading followed by everything in the cache.
func (r *Repository) FetchPhotosFromDatabase(ctx context.Context) <-chan PhotosResult {
	out := make(chan PhotosResult, 2)
	go func() {
		defer close(out)
		if !send(ctx, out, Loading[[]cache.Photo]()) {
			return
		}
		send(ctx, out, r.readBack())
	}()
	return out
}

// download runs fetch → upsert → read-back. A failed fetch or upsert is
// reported as an Error result, and the cached list is still read back so the
// caller keeps its last good data.
func (r *Repository) download(ctx context.Context, what string, fetch func(context.Context) ([]cache.Photo, error)) <-chan PhotosResult {
	out := make(chan PhotosResult, 3)
	go func() {
		defer close(out)
		if !send(ctx, out, Loading[[]cache.Photo]()) {
			return
		}

		if err := r.fetchAndStore(ctx, what, fetch); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			r.log.Warn("download failed", "what", what, "error", err)
			if !send(ctx, out, Failed[[]cache.Photo](errorMessage(err))) {
				return
			}
		}

		send(ctx, out, r.readBack())
	}()
	return out
}

func (r *Repository) fetchAndStore(ctx context.Context, what string, fetch func(context.Context) ([]cache.Photo, error)) error {
	photos, err := fetch(ctx)
	if err != nil {
		return err
	}
	if err := r.store.UpsertPhotos(photos); err != nil {
		return fmt.Errorf("caching photos: %w", err)
	}
	if err := r.store.SetLastRefresh(); err != nil {
		r.log.Warn("recording refresh time", "error", err)
	}
	r.log.Info("downloaded photos", "what", what, "count", len(photos))
	return nil
}

func (r *Repository) readBack() PhotosResult {
	photos, err := r.store.AllPhotos()
	if err != nil {
		r.log.Error("reading cache", "error", err)
		return Failed[[]cache.Photo](fmt.Sprintf("reading cache: %v", err))
	}
	return Success(photos)
}

func send(ctx context.Context, out chan<- PhotosResult, res PhotosResult) bool {
	select {
	case out <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

func errorMessage(err error) string {
	var apiErr *nasa.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}
