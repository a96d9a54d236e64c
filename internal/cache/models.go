package cache

import "time"

// MediaImage is the media type of a picture entry. Days can also carry
// "video" or "other" entries.
const MediaImage = "image"

// Photo is one Astronomy Picture of the Day record. Date is the ISO day
// (YYYY-MM-DD) and the primary key. Optional fields are empty when the API
// omitted them.
type Photo struct {
	Date           string
	Title          string
	MediaType      string
	Explanation    string
	ServiceVersion string
	URL            string
	HDURL          string
	Copyright      string
	FetchedAt      time.Time
}

func (p Photo) IsImage() bool {
	return p.MediaType == MediaImage
}

// BestURL prefers the high definition URL when present.
func (p Photo) BestURL() string {
	if p.HDURL != "" {
		return p.HDURL
	}
	return p.URL
}

type QueryOpts struct {
	Since     string // inclusive, YYYY-MM-DD
	Until     string // inclusive, YYYY-MM-DD
	MediaType string
	Search    string
	Limit     int
}
