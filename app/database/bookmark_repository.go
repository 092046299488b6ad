package database

import (
	"fmt"
)

// BookmarkRepository handles database operations for the bookmark table.
type BookmarkRepository struct {
	db *DB
}

func NewBookmarkRepository(db *DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Upsert records that an artwork is bookmarked with the given
// visibility type ("public" or "private").
func (r *BookmarkRepository) Upsert(artworkID int64, bookmarkType string) error {
	_, err := r.db.Exec(`
		INSERT INTO bookmark (type, artwork_id)
		VALUES (?, ?)
		ON CONFLICT (artwork_id) DO UPDATE SET
			type = excluded.type
	`, bookmarkType, artworkID)
	if err != nil {
		return fmt.Errorf("failed to upsert bookmark for artwork %d: %w", artworkID, err)
	}
	return nil
}

// GetBookmarkedArtworks returns a page of bookmarked artworks of one
// type.
func (r *BookmarkRepository) GetBookmarkedArtworks(bookmarkType string, limit, offset int, desc bool) ([]Artwork, error) {
	repo := ArtworkRepository{db: r.db}
	return repo.queryArtworks(`
		SELECT`+artworkColumns+`
		FROM artwork a
		JOIN author au ON au.id = a.author_id
		JOIN bookmark b ON b.artwork_id = a.id
		WHERE b.type = ?
		ORDER BY a.id `+orderClause(desc)+`
		LIMIT ? OFFSET ?
	`, bookmarkType, limit, offset)
}

func (r *BookmarkRepository) CountBookmarks(bookmarkType string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM bookmark WHERE type = ?
	`, bookmarkType).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks of type %q: %w", bookmarkType, err)
	}
	return count, nil
}
