package database

import (
	"database/sql"
	"fmt"
)

// AuthorRepository handles database operations for authors and their
// extended profiles.
type AuthorRepository struct {
	db *DB
}

func NewAuthorRepository(db *DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

// UpsertWithExtended writes an author and their extended profile in one
// transaction. The account name never changes after first insert; the
// display name and extended fields are refreshed.
func (r *AuthorRepository) UpsertWithExtended(author Author, ext AuthorExtended) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO author (id, account_name, name)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name
	`, author.ID, author.AccountName, author.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert author %d: %w", author.ID, err)
	}

	_, err = tx.Exec(`
		INSERT INTO author_extended (author_id, twitter_url, comment)
		VALUES (?, ?, ?)
		ON CONFLICT (author_id) DO UPDATE SET
			twitter_url = excluded.twitter_url,
			comment = excluded.comment
	`, author.ID, ext.TwitterURL, ext.Comment)
	if err != nil {
		return fmt.Errorf("failed to upsert extended info for author %d: %w", author.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit author %d: %w", author.ID, err)
	}

	return nil
}

// GetAuthor returns an author and their extended profile if recorded.
// Both are nil when the author is unknown.
func (r *AuthorRepository) GetAuthor(id int64) (*Author, *AuthorExtended, error) {
	var author Author
	err := r.db.QueryRow(`
		SELECT id, account_name, name FROM author WHERE id = ?
	`, id).Scan(&author.ID, &author.AccountName, &author.Name)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get author %d: %w", id, err)
	}

	var ext AuthorExtended
	err = r.db.QueryRow(`
		SELECT id, author_id, COALESCE(twitter_url, ''), COALESCE(comment, '')
		FROM author_extended WHERE author_id = ?
	`, id).Scan(&ext.ID, &ext.AuthorID, &ext.TwitterURL, &ext.Comment)
	if err == sql.ErrNoRows {
		return &author, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get extended info for author %d: %w", id, err)
	}

	return &author, &ext, nil
}
