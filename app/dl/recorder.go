package dl

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"pixivdl/app/database"
	"pixivdl/app/pixiv"
)

const metaFile = "meta.json"

// ArtworkStore persists one illustration's normalized rows as a single
// transaction. *database.ArtworkRepository satisfies it.
type ArtworkStore interface {
	Upsert(artwork database.Artwork, author database.Author, tags []database.ArtworkTag) error
}

// Recorder persists an accepted illustration: a denormalized JSON
// snapshot in the mirror directory plus normalized rows in the store.
type Recorder struct {
	store  ArtworkStore
	rawDir string
	now    func() time.Time
}

func NewRecorder(store ArtworkStore, rawDir string) *Recorder {
	return &Recorder{
		store:  store,
		rawDir: rawDir,
		now:    time.Now,
	}
}

// Record stamps the illustration with download metadata, writes the
// snapshot to <rawDir>/<id>/meta.json and upserts the author, artwork
// and tag rows. The row writes happen in one transaction; a crash never
// leaves an artwork without its author or with half its tags.
func (r *Recorder) Record(il *pixiv.Illust) error {
	dir := filepath.Join(r.rawDir, strconv.FormatInt(il.ID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	snapshot, err := r.stampSnapshot(il)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), snapshot, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata snapshot for %d: %w", il.ID, err)
	}

	artwork := database.Artwork{
		ID:           il.ID,
		Title:        il.Title,
		Caption:      il.Caption,
		UploadedAt:   il.CreateDate,
		AuthorID:     il.User.ID,
		LewdLevel:    il.SanityLevel,
		R18:          il.XRestrict != 0,
		R18G:         il.Restrict != 0,
		Bookmarks:    il.TotalBookmarks,
		Views:        il.TotalView,
		IsBookmarked: il.IsBookmarked,
		SinglePage:   il.PageCount == 1,
		PageCount:    il.PageCount,
	}

	author := database.Author{
		ID:          il.User.ID,
		AccountName: il.User.Account,
		Name:        il.User.Name,
	}

	if err := r.store.Upsert(artwork, author, dedupeTags(il)); err != nil {
		return fmt.Errorf("failed to upsert artwork %d: %w", il.ID, err)
	}

	slog.Info("Recorded metadata", "artwork", il.ID, "title", il.Title, "pages", il.PageCount)
	return nil
}

// stampSnapshot embeds download provenance into the raw remote payload.
func (r *Recorder) stampSnapshot(il *pixiv.Illust) ([]byte, error) {
	var payload map[string]any
	if err := sonic.Unmarshal(il.Raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw payload for %d: %w", il.ID, err)
	}

	payload["_meta"] = map[string]any{
		"download-date": r.now().UTC().Format(time.RFC3339),
		"tool":          "pixiv-dl",
		"weblink":       fmt.Sprintf("https://pixiv.net/en/artworks/%d", il.ID),
	}

	snapshot, err := sonic.MarshalIndent(payload, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot for %d: %w", il.ID, err)
	}
	return snapshot, nil
}

// dedupeTags drops repeated tag names; the upstream has been observed to
// send the same tag twice on one illustration.
func dedupeTags(il *pixiv.Illust) []database.ArtworkTag {
	seen := make(map[string]int, len(il.Tags))
	var tags []database.ArtworkTag

	for _, t := range il.Tags {
		if t.Name == "" {
			continue
		}
		if i, ok := seen[t.Name]; ok {
			if tags[i].TranslatedName == "" && t.TranslatedName != "" {
				tags[i].TranslatedName = t.TranslatedName
			}
			continue
		}
		seen[t.Name] = len(tags)
		tags = append(tags, database.ArtworkTag{
			ArtworkID:      il.ID,
			Name:           t.Name,
			TranslatedName: t.TranslatedName,
		})
	}

	return tags
}
