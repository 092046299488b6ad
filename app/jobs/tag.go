package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bytedance/sonic"

	"pixivdl/app/dl"
	"pixivdl/app/pixiv"
)

// tagLimitCap bounds the tag job; search listings degrade far before
// this point anyway.
const tagLimitCap = 5000

// Tag downloads search results for a tag, windowed like the following
// feed. The first translated occurrence of the tag is written next to
// the view directory as translation.json.
func (r *Runner) Tag(ctx context.Context, tag string, limit int) error {
	if limit > tagLimitCap {
		slog.Warn("Clamping tag limit", "requested", limit, "max", tagLimitCap)
		limit = tagLimitCap
	}

	slog.Info("Downloading tag", "tag", tag, "limit", limit)

	view := filepath.Join("tags", tag)
	translated := false

	for offset := 0; offset < limit; offset += feedWindow {
		window := feedWindow
		if rem := limit - offset; rem < window {
			window = rem
		}

		illusts, err := dl.Depaginate(ctx, r.gate, r.limiter, fmt.Sprintf("tag %q", tag),
			r.client.SearchIllusts(tag), dl.PageOptions{
				ParamNames: []string{"offset"},
				MaxItems:   window,
				Initial:    url.Values{"offset": {strconv.Itoa(offset)}},
			})
		if err != nil {
			return fmt.Errorf("failed to search tag %q: %w", tag, err)
		}
		if len(illusts) == 0 {
			return nil
		}

		if !translated {
			ok, err := r.writeTagTranslation(tag, illusts)
			if err != nil {
				return err
			}
			translated = ok
		}

		if _, err := r.processIllusts(ctx, illusts, r.policy, view); err != nil {
			return err
		}

		if len(illusts) < window {
			return nil
		}
	}

	return nil
}

// writeTagTranslation records the first translated hit for the tag so
// the view directory is self-describing for non-Japanese speakers.
func (r *Runner) writeTagTranslation(tag string, illusts []pixiv.Illust) (bool, error) {
	folded := dl.FoldTag(tag)

	for i := range illusts {
		for _, t := range illusts[i].Tags {
			if dl.FoldTag(t.Name) != folded || t.TranslatedName == "" {
				continue
			}

			dir := r.viewDir("tags", tag)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return false, fmt.Errorf("failed to create %s: %w", dir, err)
			}

			data, err := sonic.MarshalIndent(struct {
				Name           string `json:"name"`
				TranslatedName string `json:"translated_name"`
			}{t.Name, t.TranslatedName}, "", "    ")
			if err != nil {
				return false, fmt.Errorf("failed to marshal tag translation: %w", err)
			}

			path := filepath.Join(dir, "translation.json")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return false, fmt.Errorf("failed to write %s: %w", path, err)
			}

			slog.Debug("Wrote tag translation", "tag", tag, "translated", t.TranslatedName)
			return true, nil
		}
	}

	return false, nil
}
