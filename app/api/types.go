package api

import (
	"fmt"

	"pixivdl/app/database"
)

// pageSize is the fixed page length of every grid endpoint.
const pageSize = 25

type Handler struct {
	artworks  *database.ArtworkRepository
	authors   *database.AuthorRepository
	bookmarks *database.BookmarkRepository
	rawDir    string
	version   string
}

func NewHandler(artworks *database.ArtworkRepository, authors *database.AuthorRepository,
	bookmarks *database.BookmarkRepository, rawDir string, version string) *Handler {
	return &Handler{
		artworks:  artworks,
		authors:   authors,
		bookmarks: bookmarks,
		rawDir:    rawDir,
		version:   version,
	}
}

// ParseSortMode maps the sort query parameter to a sort direction.
// Unset sorts newest first; anything but asc/desc is an error so bad
// input surfaces as a 400 instead of being silently reinterpreted.
func ParseSortMode(s string) (desc bool, err error) {
	switch s {
	case "", "desc":
		return true, nil
	case "asc":
		return false, nil
	default:
		return false, fmt.Errorf("invalid sort mode %q, expected asc or desc", s)
	}
}
