package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// BlacklistRepository handles database operations for the blacklist.
type BlacklistRepository struct {
	db *DB
}

func NewBlacklistRepository(db *DB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

// Add inserts one blacklist entry. At least one of the fields must be
// set.
func (r *BlacklistRepository) Add(entry BlacklistEntry) error {
	if entry.AuthorID == nil && entry.ArtworkID == nil && entry.Tag == nil {
		return fmt.Errorf("blacklist entry requires at least one of author id, artwork id, tag")
	}

	_, err := r.db.Exec(`
		INSERT INTO blacklist (author_id, artwork_id, tag)
		VALUES (?, ?, ?)
	`, entry.AuthorID, entry.ArtworkID, entry.Tag)
	if err != nil {
		return fmt.Errorf("failed to add blacklist entry: %w", err)
	}

	return nil
}

// Match checks an illustration's author id, its own id and its tag set
// against the blacklist. Returns a description of the first matching
// entry, or "" when nothing matches.
func (r *BlacklistRepository) Match(authorID, artworkID int64, tags []string) (string, error) {
	query := `
		SELECT author_id, artwork_id, tag
		FROM blacklist
		WHERE author_id = ? OR artwork_id = ?`
	args := []any{authorID, artworkID}

	if len(tags) > 0 {
		placeholders := strings.Repeat("?, ", len(tags)-1) + "?"
		query += " OR tag IN (" + placeholders + ")"
		for _, tag := range tags {
			args = append(args, tag)
		}
	}
	query += " LIMIT 1"

	var (
		matchedAuthor  sql.NullInt64
		matchedArtwork sql.NullInt64
		matchedTag     sql.NullString
	)
	err := r.db.QueryRow(query, args...).Scan(&matchedAuthor, &matchedArtwork, &matchedTag)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to match blacklist: %w", err)
	}

	switch {
	case matchedTag.Valid:
		return fmt.Sprintf("tag %q", matchedTag.String), nil
	case matchedArtwork.Valid:
		return fmt.Sprintf("artwork %d", matchedArtwork.Int64), nil
	case matchedAuthor.Valid:
		return fmt.Sprintf("author %d", matchedAuthor.Int64), nil
	default:
		return "blacklisted", nil
	}
}
