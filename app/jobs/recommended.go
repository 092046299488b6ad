package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"pixivdl/app/dl"
)

// Recommended downloads the recommendation feed, up to limit items.
func (r *Runner) Recommended(ctx context.Context, limit int) error {
	slog.Info("Downloading recommended feed", "limit", limit)

	illusts, err := dl.Depaginate(ctx, r.gate, r.limiter, "recommended feed",
		r.client.Recommended(), dl.PageOptions{
			ParamNames: []string{
				"min_bookmark_id_for_recent_illust",
				"max_bookmark_id_for_recommend",
				"offset",
			},
			MaxItems: limit,
		})
	if err != nil {
		return fmt.Errorf("failed to list recommended feed: %w", err)
	}

	_, err = r.processIllusts(ctx, illusts, r.policy, "recommended")
	return err
}
