package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 {
	return &v
}

func strp(v string) *string {
	return &v
}

func TestBlacklistAddRequiresAField(t *testing.T) {
	db := newTestDB(t)
	repo := NewBlacklistRepository(db)

	err := repo.Add(BlacklistEntry{})
	assert.Error(t, err)

	assert.NoError(t, repo.Add(BlacklistEntry{AuthorID: int64p(10)}))
	assert.NoError(t, repo.Add(BlacklistEntry{ArtworkID: int64p(555)}))
	assert.NoError(t, repo.Add(BlacklistEntry{Tag: strp("cat")}))
}

func TestBlacklistMatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewBlacklistRepository(db)

	require.NoError(t, repo.Add(BlacklistEntry{AuthorID: int64p(10)}))
	require.NoError(t, repo.Add(BlacklistEntry{ArtworkID: int64p(555)}))
	require.NoError(t, repo.Add(BlacklistEntry{Tag: strp("cat")}))

	matched, err := repo.Match(10, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "author 10", matched)

	matched, err = repo.Match(99, 555, nil)
	require.NoError(t, err)
	assert.Equal(t, "artwork 555", matched)

	matched, err = repo.Match(99, 1, []string{"dog", "cat"})
	require.NoError(t, err)
	assert.Equal(t, `tag "cat"`, matched)

	matched, err = repo.Match(99, 1, []string{"dog"})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestBlacklistMatchEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewBlacklistRepository(db)

	matched, err := repo.Match(1, 2, []string{"anything"})
	require.NoError(t, err)
	assert.Empty(t, matched)
}
