package dl

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// Stats summarizes the state of the local mirror.
type Stats struct {
	Objects  int // mirror entries with a metadata snapshot
	Pages    int // pages those entries reference
	Files    int // page files actually on disk
	Complete int // entries with a completion marker
}

type statsMeta struct {
	MetaSinglePage struct {
		OriginalImageURL string `json:"original_image_url"`
	} `json:"meta_single_page"`
	MetaPages []struct {
		ImageURLs struct {
			Original string `json:"original"`
		} `json:"image_urls"`
	} `json:"meta_pages"`
}

// CollectStats walks the canonical mirror and tallies snapshots, pages,
// on-disk files and completion markers. Stray files in the mirror root
// are ignored.
func CollectStats(rawDir string) (Stats, error) {
	var stats Stats

	entries, err := os.ReadDir(rawDir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("failed to read mirror dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(rawDir, entry.Name())

		data, err := os.ReadFile(filepath.Join(dir, metaFile))
		if err != nil {
			continue
		}

		var meta statsMeta
		if err := sonic.Unmarshal(data, &meta); err != nil {
			continue
		}
		stats.Objects++

		if _, err := os.Lstat(filepath.Join(dir, markerFile)); err == nil {
			stats.Complete++
		}

		urls := make([]string, 0, len(meta.MetaPages)+1)
		if len(meta.MetaPages) > 0 {
			for _, p := range meta.MetaPages {
				urls = append(urls, p.ImageURLs.Original)
			}
		} else if meta.MetaSinglePage.OriginalImageURL != "" {
			urls = append(urls, meta.MetaSinglePage.OriginalImageURL)
		}

		stats.Pages += len(urls)
		for _, raw := range urls {
			parsed, err := url.Parse(raw)
			if err != nil {
				continue
			}
			if _, err := os.Lstat(filepath.Join(dir, filepath.Base(parsed.Path))); err == nil {
				stats.Files++
			}
		}
	}

	return stats, nil
}
