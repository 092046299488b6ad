package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookmarkUpsert(t *testing.T) {
	db := newTestDB(t)
	artworks := NewArtworkRepository(db)
	bookmarks := NewBookmarkRepository(db)

	artwork, author := testArtwork(1, 10)
	require.NoError(t, artworks.Upsert(artwork, author, nil))

	require.NoError(t, bookmarks.Upsert(1, "public"))

	count, err := bookmarks.CountBookmarks("public")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Moving a bookmark to private replaces the row instead of adding one.
	require.NoError(t, bookmarks.Upsert(1, "private"))

	count, err = bookmarks.CountBookmarks("public")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = bookmarks.CountBookmarks("private")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetBookmarkedArtworks(t *testing.T) {
	db := newTestDB(t)
	artworks := NewArtworkRepository(db)
	bookmarks := NewBookmarkRepository(db)

	for id := int64(1); id <= 3; id++ {
		artwork, author := testArtwork(id, 10)
		require.NoError(t, artworks.Upsert(artwork, author, nil))
	}
	require.NoError(t, bookmarks.Upsert(1, "public"))
	require.NoError(t, bookmarks.Upsert(3, "public"))

	got, err := bookmarks.GetBookmarkedArtworks("public", 10, 0, false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	got, err = bookmarks.GetBookmarkedArtworks("private", 10, 0, false)
	require.NoError(t, err)
	assert.Empty(t, got)
}
