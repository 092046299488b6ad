package jobs

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pixivdl/app/dl"
)

// supercrawlChunk is how many followed users are mirrored per round, so
// progress is visible and an abort loses at most one round.
const supercrawlChunk = 15

// Supercrawl mirrors every user the authenticated account follows. The
// follow list can be large, so the run is confirmed first unless
// skipConfirm is set.
func (r *Runner) Supercrawl(ctx context.Context, skipConfirm bool) error {
	previews, err := dl.Depaginate(ctx, r.gate, r.limiter, "followed users",
		r.client.Following(r.client.UserID()),
		dl.PageOptions{ParamNames: []string{"offset"}})
	if err != nil {
		return fmt.Errorf("failed to list followed users: %w", err)
	}

	if len(previews) == 0 {
		slog.Info("Not following anyone, nothing to do")
		return nil
	}

	if !skipConfirm {
		ok, err := r.confirmSupercrawl(len(previews))
		if err != nil {
			return err
		}
		if !ok {
			slog.Info("Supercrawl aborted")
			return nil
		}
	}

	for i := 0; i < len(previews); i += supercrawlChunk {
		end := i + supercrawlChunk
		if end > len(previews) {
			end = len(previews)
		}

		slog.Info("Supercrawl round", "from", i+1, "to", end, "total", len(previews))

		for _, preview := range previews[i:end] {
			if err := r.Mirror(ctx, preview.User.ID, false); err != nil {
				return fmt.Errorf("failed to mirror user %d: %w", preview.User.ID, err)
			}
		}
	}

	return nil
}

func (r *Runner) confirmSupercrawl(users int) (bool, error) {
	fmt.Fprintf(r.out, "About to mirror the works of %d users. Continue? [y/N] ", users)

	line, err := bufio.NewReader(r.confirm).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
