package database

import (
	"time"
)

// Author is one remote account. The account name is immutable once
// recorded; the display name is refreshed on every encounter.
type Author struct {
	ID          int64
	AccountName string
	Name        string
}

// AuthorExtended carries the profile fields only the user-detail
// endpoint returns.
type AuthorExtended struct {
	ID         int64
	AuthorID   int64
	TwitterURL string
	Comment    string
}

// Artwork is one mirrored illustration. Counters and flags are
// refreshed on re-encounter; everything else is written once.
type Artwork struct {
	ID           int64
	Title        string
	Caption      string
	UploadedAt   time.Time
	AuthorID     int64
	LewdLevel    int
	R18          bool
	R18G         bool
	Bookmarks    int
	Views        int
	IsBookmarked bool
	SinglePage   bool
	PageCount    int

	// Populated by queries that join, nil/empty otherwise.
	AuthorName string
	Tags       []ArtworkTag
}

type ArtworkTag struct {
	ID             int64
	Name           string
	TranslatedName string
	ArtworkID      int64
}

// TagSummary is a gallery-facing aggregate: one tag with how many
// artworks carry it and a sample artwork for the card.
type TagSummary struct {
	Name            string
	TranslatedName  string
	ArtworkCount    int
	SampleArtworkID int64
}

type Bookmark struct {
	ID        int64
	Type      string
	ArtworkID int64
}

// BlacklistEntry matches by any non-nil field.
type BlacklistEntry struct {
	ID        int64
	AuthorID  *int64
	ArtworkID *int64
	Tag       *string
}
