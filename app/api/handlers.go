package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pixivdl/app/database"
	"pixivdl/app/dl"
)

func artworkInfo(a database.Artwork) map[string]interface{} {
	tags := make([]map[string]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		tags = append(tags, map[string]string{
			"name":            t.Name,
			"translated_name": t.TranslatedName,
		})
	}

	return map[string]interface{}{
		"id":            a.ID,
		"title":         a.Title,
		"caption":       a.Caption,
		"uploaded_at":   a.UploadedAt.Format(time.RFC3339),
		"author_id":     a.AuthorID,
		"author_name":   a.AuthorName,
		"lewd_level":    a.LewdLevel,
		"r18":           a.R18,
		"r18g":          a.R18G,
		"bookmarks":     a.Bookmarks,
		"views":         a.Views,
		"is_bookmarked": a.IsBookmarked,
		"single_page":   a.SinglePage,
		"page_count":    a.PageCount,
		"tags":          tags,
	}
}

func grid(c *gin.Context) (limit, offset int, desc, ok bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return 0, 0, false, false
	}

	desc, err = ParseSortMode(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, 0, false, false
	}

	return pageSize, (page - 1) * pageSize, desc, true
}

func (h *Handler) ListArtworks(c *gin.Context) {
	limit, offset, desc, ok := grid(c)
	if !ok {
		return
	}

	artworks, err := h.artworks.GetArtworks(limit, offset, desc)
	if err != nil {
		slog.Error("Database error", "operation", "get_artworks", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	total, err := h.artworks.CountArtworks()
	if err != nil {
		slog.Error("Database error", "operation", "count_artworks", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	infos := make([]map[string]interface{}, 0, len(artworks))
	for _, a := range artworks {
		infos = append(infos, artworkInfo(a))
	}

	c.JSON(http.StatusOK, gin.H{"artworks": infos, "total": total})
}

func (h *Handler) GetArtwork(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid artwork id"})
		return
	}

	artwork, err := h.artworks.GetArtwork(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_artwork", "artwork", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if artwork == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}

	info := artworkInfo(*artwork)

	pages, err := h.listPageFiles(id)
	if err != nil {
		slog.Error("Failed to list page files", "artwork", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	info["pages"] = pages

	c.JSON(http.StatusOK, info)
}

// listPageFiles returns the downloaded page files of one artwork in
// page order, empty when the mirror directory does not exist yet.
func (h *Handler) listPageFiles(id int64) ([]string, error) {
	dir := filepath.Join(h.rawDir, strconv.FormatInt(id, 10))

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if name == "meta.json" || name == "marker.json" {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)

	return files, nil
}

func (h *Handler) GetArtworkPage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid artwork id"})
		return
	}

	num, err := strconv.Atoi(c.Param("num"))
	if err != nil || num < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page number"})
		return
	}

	pages, err := h.listPageFiles(id)
	if err != nil {
		slog.Error("Failed to list page files", "artwork", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if num > len(pages) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		return
	}

	c.File(filepath.Join(h.rawDir, strconv.FormatInt(id, 10), pages[num-1]))
}

func (h *Handler) DeleteArtwork(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid artwork id"})
		return
	}

	artwork, err := h.artworks.GetArtwork(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_artwork", "artwork", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if artwork == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artwork not found"})
		return
	}

	if err := h.artworks.DeleteAndBlacklist(id); err != nil {
		slog.Error("Database error", "operation", "delete_artwork", "artwork", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	// Symlinks in the view directories go dangling here; downloads treat
	// a missing mirror directory as "not downloaded" and the projector
	// replaces dangling links, so no sweep is needed.
	dir := filepath.Join(h.rawDir, strconv.FormatInt(id, 10))
	if err := os.RemoveAll(dir); err != nil {
		slog.Error("Failed to remove mirror directory", "artwork", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	slog.Info("Deleted and blacklisted artwork", "artwork", id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTags(c *gin.Context) {
	limit, offset, desc, ok := grid(c)
	if !ok {
		return
	}

	tags, err := h.artworks.GetTags(limit, offset, desc)
	if err != nil {
		slog.Error("Database error", "operation", "get_tags", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	total, err := h.artworks.CountTags()
	if err != nil {
		slog.Error("Database error", "operation", "count_tags", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	infos := make([]map[string]interface{}, 0, len(tags))
	for _, t := range tags {
		infos = append(infos, map[string]interface{}{
			"name":            t.Name,
			"translated_name": t.TranslatedName,
			"artworks":        t.ArtworkCount,
			"sample_artwork":  t.SampleArtworkID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"tags": infos, "total": total})
}

func (h *Handler) GetArtworksByTag(c *gin.Context) {
	name := c.Param("name")

	limit, offset, desc, ok := grid(c)
	if !ok {
		return
	}

	artworks, err := h.artworks.GetArtworksByTag(name, limit, offset, desc)
	if err != nil {
		slog.Error("Database error", "operation", "get_artworks_by_tag", "tag", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	total, err := h.artworks.CountArtworksByTag(name)
	if err != nil {
		slog.Error("Database error", "operation", "count_artworks_by_tag", "tag", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	infos := make([]map[string]interface{}, 0, len(artworks))
	for _, a := range artworks {
		infos = append(infos, artworkInfo(a))
	}

	c.JSON(http.StatusOK, gin.H{"tag": name, "artworks": infos, "total": total})
}

func (h *Handler) GetAuthor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author id"})
		return
	}

	limit, offset, desc, ok := grid(c)
	if !ok {
		return
	}

	author, ext, err := h.authors.GetAuthor(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_author", "author", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if author == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Author not found"})
		return
	}

	artworks, err := h.artworks.GetArtworksByAuthor(id, limit, offset, desc)
	if err != nil {
		slog.Error("Database error", "operation", "get_artworks_by_author", "author", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	infos := make([]map[string]interface{}, 0, len(artworks))
	for _, a := range artworks {
		infos = append(infos, artworkInfo(a))
	}

	info := map[string]interface{}{
		"id":           author.ID,
		"account_name": author.AccountName,
		"name":         author.Name,
		"artworks":     infos,
	}
	if ext != nil {
		info["twitter_url"] = ext.TwitterURL
		info["comment"] = ext.Comment
	}

	c.JSON(http.StatusOK, info)
}

func (h *Handler) ListBookmarks(c *gin.Context) {
	bookmarkType := c.Param("type")
	if bookmarkType != "public" && bookmarkType != "private" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bookmark type must be public or private"})
		return
	}

	limit, offset, desc, ok := grid(c)
	if !ok {
		return
	}

	artworks, err := h.bookmarks.GetBookmarkedArtworks(bookmarkType, limit, offset, desc)
	if err != nil {
		slog.Error("Database error", "operation", "get_bookmarked_artworks", "type", bookmarkType, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	total, err := h.bookmarks.CountBookmarks(bookmarkType)
	if err != nil {
		slog.Error("Database error", "operation", "count_bookmarks", "type", bookmarkType, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	infos := make([]map[string]interface{}, 0, len(artworks))
	for _, a := range artworks {
		infos = append(infos, artworkInfo(a))
	}

	c.JSON(http.StatusOK, gin.H{"type": bookmarkType, "artworks": infos, "total": total})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
	}

	if count, err := h.artworks.CountArtworks(); err == nil {
		health["artworks"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := dl.CollectStats(h.rawDir)
	if err != nil {
		slog.Error("Failed to collect mirror stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	info := map[string]interface{}{
		"objects":  stats.Objects,
		"pages":    stats.Pages,
		"files":    stats.Files,
		"complete": stats.Complete,
	}

	if count, err := h.artworks.CountArtworks(); err == nil {
		info["recorded"] = count
	}

	c.JSON(http.StatusOK, info)
}
