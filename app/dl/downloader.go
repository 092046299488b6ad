package dl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"pixivdl/app/pixiv"
)

const markerFile = "marker.json"

// PageFetcher fetches one URL into a directory. *pixiv.Client satisfies
// it.
type PageFetcher interface {
	Download(ctx context.Context, url, dir, name string) error
}

// Marker is the sentinel written into an illustration's mirror directory
// once every page has been fetched. Its presence is the single source of
// truth for "fully mirrored".
type Marker struct {
	Downloaded string `json:"downloaded"`
}

// Downloader owns the canonical mirror directory and fetches units into
// it through the retry gate.
type Downloader struct {
	fetcher PageFetcher
	gate    *Gate
	rawDir  string
	now     func() time.Time
}

func NewDownloader(fetcher PageFetcher, gate *Gate, rawDir string) *Downloader {
	return &Downloader{
		fetcher: fetcher,
		gate:    gate,
		rawDir:  rawDir,
		now:     time.Now,
	}
}

func (d *Downloader) RawDir() string {
	return d.rawDir
}

// DownloadUnit fetches every page of one unit, in page order, then
// writes the completion marker. If the marker already exists the unit is
// skipped before any network I/O. A page failure aborts the remaining
// pages and leaves no marker, so the next run retries the whole unit.
func (d *Downloader) DownloadUnit(ctx context.Context, unit Unit) error {
	dir := filepath.Join(d.rawDir, strconv.FormatInt(unit.ArtworkID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	markerPath := filepath.Join(dir, markerFile)
	if _, err := os.Lstat(markerPath); err == nil {
		slog.Debug("Skipping download, marker exists", "artwork", unit.ArtworkID)
		return nil
	}

	for _, page := range unit.Pages {
		slog.Info("Downloading page", "artwork", unit.ArtworkID,
			"page", page.PageNum, "of", len(unit.Pages))

		name := fmt.Sprintf("download artwork %d page %d", unit.ArtworkID, page.PageNum)
		_, err := Retry(ctx, d.gate, name, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, d.fetcher.Download(ctx, page.URL, dir, "")
		})
		if err != nil {
			return err
		}
	}

	marker, err := sonic.Marshal(Marker{Downloaded: d.now().UTC().Format(time.RFC3339)})
	if err != nil {
		return fmt.Errorf("failed to marshal marker: %w", err)
	}
	if err := os.WriteFile(markerPath, marker, 0o644); err != nil {
		return fmt.Errorf("failed to write marker for %d: %w", unit.ArtworkID, err)
	}

	slog.Info("Download complete", "artwork", unit.ArtworkID, "pages", len(unit.Pages))
	return nil
}

// DownloadAvatar fetches a user's profile picture into dir and aliases
// it as <user id>.<ext>. Returns false if the picture was already
// present or the user has none.
func (d *Downloader) DownloadAvatar(ctx context.Context, user pixiv.User, dir string) (bool, error) {
	if user.ProfileImageURL == "" {
		slog.Debug("Skipping avatar, no profile image", "user", user.ID)
		return false, nil
	}

	parsed, err := url.Parse(user.ProfileImageURL)
	if err != nil {
		return false, fmt.Errorf("invalid avatar URL for user %d: %w", user.ID, err)
	}
	rawName := filepath.Base(parsed.Path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if _, err := os.Lstat(filepath.Join(dir, rawName)); err == nil {
		slog.Debug("Skipping avatar, already downloaded", "user", user.ID)
		return false, nil
	}

	name := fmt.Sprintf("download avatar for user %d", user.ID)
	_, err = Retry(ctx, d.gate, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.fetcher.Download(ctx, user.ProfileImageURL, dir, rawName)
	})
	if err != nil {
		return false, err
	}

	ext := rawName
	if i := strings.LastIndex(rawName, "."); i >= 0 {
		ext = rawName[i+1:]
	}
	alias := filepath.Join(dir, strconv.FormatInt(user.ID, 10)+"."+ext)
	if err := os.Remove(alias); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to replace avatar alias for %d: %w", user.ID, err)
	}
	if err := os.Symlink(rawName, alias); err != nil {
		return false, fmt.Errorf("failed to link avatar alias for %d: %w", user.ID, err)
	}

	slog.Info("Downloaded avatar", "user", user.ID)
	return true, nil
}
