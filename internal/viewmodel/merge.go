package viewmodel

import (
	"slices"
	"strings"

	"github.com/matheuskafuri/apod/internal/cache"
)

// MergePhotos unions current and incoming by date. An incoming record
// replaces a current one with the same date. Only images are kept and the
// result is ordered newest first.
func MergePhotos(current, incoming []cache.Photo) []cache.Photo {
	byDate := make(map[string]cache.Photo, len(current)+len(incoming))
	for _, p := range current {
		byDate[p.Date] = p
	}
	for _, p := range incoming {
		byDate[p.Date] = p
	}

	merged := make([]cache.Photo, 0, len(byDate))
	for _, p := range byDate {
		if p.IsImage() {
			merged = append(merged, p)
		}
	}
	slices.SortFunc(merged, func(a, b cache.Photo) int {
		return strings.Compare(b.Date, a.Date)
	})
	return merged
}
