package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"pixivdl/app/dl"
)

// feedWindow is how many items each round of a windowed feed job lists
// before handing them to the pipeline.
const feedWindow = 30

// Following downloads the newest works of followed users, up to limit,
// in windows so downloads start before the whole feed is listed.
func (r *Runner) Following(ctx context.Context, limit int) error {
	slog.Info("Downloading following feed", "limit", limit)

	for offset := 0; offset < limit; offset += feedWindow {
		window := feedWindow
		if rem := limit - offset; rem < window {
			window = rem
		}

		illusts, err := dl.Depaginate(ctx, r.gate, r.limiter, "following feed",
			r.client.FollowFeed(), dl.PageOptions{
				ParamNames: []string{"offset"},
				MaxItems:   window,
				Initial:    url.Values{"offset": {strconv.Itoa(offset)}},
			})
		if err != nil {
			return fmt.Errorf("failed to list following feed: %w", err)
		}
		if len(illusts) == 0 {
			return nil
		}

		if _, err := r.processIllusts(ctx, illusts, r.policy, "following"); err != nil {
			return err
		}

		// A short window means the feed is exhausted.
		if len(illusts) < window {
			return nil
		}
	}

	return nil
}
