package database

import (
	"database/sql"
	"fmt"
)

// ArtworkRepository handles database operations for artworks and their
// tags.
type ArtworkRepository struct {
	db *DB
}

func NewArtworkRepository(db *DB) *ArtworkRepository {
	return &ArtworkRepository{db: db}
}

// Upsert writes one artwork, its author and its tags as a single
// transaction. Immutable fields (title, caption, upload date, author
// account name) are only written on first insert; counters, visibility
// flags and tag translations are refreshed every time.
func (r *ArtworkRepository) Upsert(artwork Artwork, author Author, tags []ArtworkTag) error {
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
		INSERT INTO artwork (
			id, title, caption, uploaded_at, author_id,
			lewd_level, r18, r18g, bookmarks, views, is_bookmarked,
			single_page, page_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			bookmarks = excluded.bookmarks,
			views = excluded.views,
			is_bookmarked = excluded.is_bookmarked
	`, artwork.ID, artwork.Title, artwork.Caption, artwork.UploadedAt, artwork.AuthorID,
		artwork.LewdLevel, artwork.R18, artwork.R18G, artwork.Bookmarks, artwork.Views,
		artwork.IsBookmarked, artwork.SinglePage, artwork.PageCount)
	if err != nil {
		return fmt.Errorf("failed to upsert artwork %d: %w", artwork.ID, err)
	}

	for _, tag := range tags {
		var translated any
		if tag.TranslatedName != "" {
			translated = tag.TranslatedName
		}

		_, err = tx.Exec(`
			INSERT INTO artwork_tag (name, translated_name, artwork_id)
			VALUES (?, ?, ?)
			ON CONFLICT (name, artwork_id) DO UPDATE SET
				translated_name = COALESCE(excluded.translated_name, artwork_tag.translated_name)
		`, tag.Name, translated, artwork.ID)
		if err != nil {
			return fmt.Errorf("failed to upsert tag %q for artwork %d: %w", tag.Name, artwork.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit artwork %d: %w", artwork.ID, err)
	}

	return nil
}

const artworkColumns = `
	a.id, a.title, COALESCE(a.caption, ''), a.uploaded_at, a.author_id,
	a.lewd_level, a.r18, a.r18g, a.bookmarks, a.views, a.is_bookmarked,
	a.single_page, a.page_count, au.name`

func scanArtwork(scanner interface{ Scan(...any) error }) (Artwork, error) {
	var a Artwork
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Caption, &a.UploadedAt, &a.AuthorID,
		&a.LewdLevel, &a.R18, &a.R18G, &a.Bookmarks, &a.Views, &a.IsBookmarked,
		&a.SinglePage, &a.PageCount, &a.AuthorName,
	)
	return a, err
}

// GetArtwork returns one artwork with its tags, or nil if absent.
func (r *ArtworkRepository) GetArtwork(id int64) (*Artwork, error) {
	row := r.db.QueryRow(`
		SELECT`+artworkColumns+`
		FROM artwork a
		JOIN author au ON au.id = a.author_id
		WHERE a.id = ?
	`, id)

	artwork, err := scanArtwork(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artwork %d: %w", id, err)
	}

	rows, err := r.db.Query(`
		SELECT id, name, COALESCE(translated_name, ''), artwork_id
		FROM artwork_tag
		WHERE artwork_id = ?
		ORDER BY name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for artwork %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag ArtworkTag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.TranslatedName, &tag.ArtworkID); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		artwork.Tags = append(artwork.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return &artwork, nil
}

func (r *ArtworkRepository) queryArtworks(query string, args ...any) ([]Artwork, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artworks: %w", err)
	}
	defer rows.Close()

	var artworks []Artwork
	for rows.Next() {
		artwork, err := scanArtwork(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artwork row: %w", err)
		}
		artworks = append(artworks, artwork)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artwork rows: %w", err)
	}

	return artworks, nil
}

func orderClause(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// GetArtworks returns a page of artworks ordered by id.
func (r *ArtworkRepository) GetArtworks(limit, offset int, desc bool) ([]Artwork, error) {
	return r.queryArtworks(`
		SELECT`+artworkColumns+`
		FROM artwork a
		JOIN author au ON au.id = a.author_id
		ORDER BY a.id `+orderClause(desc)+`
		LIMIT ? OFFSET ?
	`, limit, offset)
}

func (r *ArtworkRepository) CountArtworks() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM artwork").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count artworks: %w", err)
	}
	return count, nil
}

// GetArtworksByTag returns a page of artworks carrying the named tag.
func (r *ArtworkRepository) GetArtworksByTag(tag string, limit, offset int, desc bool) ([]Artwork, error) {
	return r.queryArtworks(`
		SELECT`+artworkColumns+`
		FROM artwork a
		JOIN author au ON au.id = a.author_id
		JOIN artwork_tag t ON t.artwork_id = a.id
		WHERE t.name = ?
		ORDER BY a.id `+orderClause(desc)+`
		LIMIT ? OFFSET ?
	`, tag, limit, offset)
}

func (r *ArtworkRepository) CountArtworksByTag(tag string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM artwork_tag WHERE name = ?
	`, tag).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count artworks for tag %q: %w", tag, err)
	}
	return count, nil
}

// GetArtworksByAuthor returns a page of one author's artworks.
func (r *ArtworkRepository) GetArtworksByAuthor(authorID int64, limit, offset int, desc bool) ([]Artwork, error) {
	return r.queryArtworks(`
		SELECT`+artworkColumns+`
		FROM artwork a
		JOIN author au ON au.id = a.author_id
		WHERE a.author_id = ?
		ORDER BY a.id `+orderClause(desc)+`
		LIMIT ? OFFSET ?
	`, authorID, limit, offset)
}

// GetTags returns a page of tag aggregates ordered by artwork count.
func (r *ArtworkRepository) GetTags(limit, offset int, desc bool) ([]TagSummary, error) {
	rows, err := r.db.Query(`
		SELECT name, COALESCE(MAX(translated_name), ''), COUNT(*), MAX(artwork_id)
		FROM artwork_tag
		GROUP BY name
		ORDER BY COUNT(*) `+orderClause(desc)+`, name
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []TagSummary
	for rows.Next() {
		var t TagSummary
		if err := rows.Scan(&t.Name, &t.TranslatedName, &t.ArtworkCount, &t.SampleArtworkID); err != nil {
			return nil, fmt.Errorf("failed to scan tag summary row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag summary rows: %w", err)
	}

	return tags, nil
}

func (r *ArtworkRepository) CountTags() (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM (SELECT DISTINCT name FROM artwork_tag)
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return count, nil
}

// DeleteAndBlacklist removes an artwork's rows and blacklists its id in
// one transaction so the next crawl cannot re-ingest it. The caller is
// responsible for removing the mirror entry on disk.
func (r *ArtworkRepository) DeleteAndBlacklist(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM artwork_tag WHERE artwork_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete tags for artwork %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM bookmark WHERE artwork_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete bookmark for artwork %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM artwork WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete artwork %d: %w", id, err)
	}
	if _, err := tx.Exec("INSERT INTO blacklist (artwork_id) VALUES (?)", id); err != nil {
		return fmt.Errorf("failed to blacklist artwork %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deletion of artwork %d: %w", id, err)
	}

	return nil
}
