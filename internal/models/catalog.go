package models

import "time"

// MediaType identifies the kind of catalog item.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeShow  MediaType = "show"
)

// StreamKind identifies a media stream inside a file.
type StreamKind string

const (
	StreamVideo    StreamKind = "video"
	StreamAudio    StreamKind = "audio"
	StreamSubtitle StreamKind = "subtitle"
)

// MediaStream describes one video, audio or subtitle stream of an item.
type MediaStream struct {
	Index    int        `json:"index"`
	Kind     StreamKind `json:"kind"`
	Codec    string     `json:"codec,omitempty"`
	Language string     `json:"language,omitempty"`
	Title    string     `json:"title,omitempty"`
	Default  bool       `json:"default,omitempty"`
	Forced   bool       `json:"forced,omitempty"`
	Channels int        `json:"channels,omitempty"`
	Width    int        `json:"width,omitempty"`
	Height   int        `json:"height,omitempty"`
}

// ExternalID links a catalog item to an external metadata provider (imdb, tmdb, tvdb).
type ExternalID struct {
	Provider string `json:"provider"`
	Value    string `json:"value"`
}

// CatalogItem mirrors one title in the remote media library.
type CatalogItem struct {
	ID           string        `json:"id"`
	LibraryID    string        `json:"library_id"`
	Title        string        `json:"title"`
	SortTitle    string        `json:"sort_title,omitempty"`
	Year         *int          `json:"year"`
	Type         MediaType     `json:"type"`
	Summary      string        `json:"summary,omitempty"`
	Rating       float64       `json:"rating,omitempty"`
	DurationMs   int64         `json:"duration_ms,omitempty"`
	MediaStreams []MediaStream `json:"media_streams,omitempty"`
	ExternalIDs  []ExternalID  `json:"external_ids,omitempty"`
	Collections  []string      `json:"collections,omitempty"`
	AddedAt      time.Time     `json:"added_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// HasYear reports whether the item carries a release year.
func (c CatalogItem) HasYear() bool {
	return c.Year != nil
}

// SortKey returns the title used for stable catalog ordering.
func (c CatalogItem) SortKey() string {
	if c.SortTitle != "" {
		return c.SortTitle
	}
	return c.Title
}

// CatalogRecord is the flat persisted shape of a CatalogItem.
// Nested fields are stored as codec-encoded blobs.
type CatalogRecord struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profile_id"`
	LibraryID    string    `json:"library_id"`
	Title        string    `json:"title"`
	SortTitle    string    `json:"sort_title,omitempty"`
	Year         *int      `json:"year"`
	Type         MediaType `json:"type"`
	Summary      string    `json:"summary,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	DurationMs   int64     `json:"duration_ms,omitempty"`
	MediaStreams []byte    `json:"media_streams,omitempty"`
	ExternalIDs  []byte    `json:"external_ids,omitempty"`
	Collections  []byte    `json:"collections,omitempty"`
	AddedAt      time.Time `json:"added_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CachedAt     time.Time `json:"cached_at"`
}

// IntPtr returns a pointer to v. Handy for optional years.
func IntPtr(v int) *int {
	return &v
}

// Library is one media library on the remote server.
type Library struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Type  MediaType `json:"type"`
}
