package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"pixivdl/app/dl"
)

// Bookmarks downloads the authenticated user's public and private
// bookmarks. Bookmarks are ingested unfiltered unless filter_bookmarks
// is enabled; R-18 visibility still applies.
func (r *Runner) Bookmarks(ctx context.Context) error {
	policy := r.policy
	if !r.filterBookmarks {
		policy.Unfiltered = true
	}

	for _, restrict := range []string{"public", "private"} {
		name := fmt.Sprintf("%s bookmarks", restrict)
		slog.Info("Downloading bookmarks", "restrict", restrict)

		illusts, err := dl.Depaginate(ctx, r.gate, r.limiter, name,
			r.client.UserBookmarks(r.client.UserID(), restrict),
			dl.PageOptions{ParamNames: []string{"max_bookmark_id"}})
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", name, err)
		}

		accepted, err := r.processIllusts(ctx, illusts, policy, filepath.Join("bookmarks", restrict))
		if err != nil {
			return err
		}

		for _, il := range accepted {
			if err := r.bookmarks.Upsert(il.ID, restrict); err != nil {
				return fmt.Errorf("failed to record bookmark for artwork %d: %w", il.ID, err)
			}
		}
	}

	return nil
}
