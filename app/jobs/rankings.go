package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"pixivdl/app/dl"
	"pixivdl/app/pixiv"
)

// Rankings downloads the current ranking listing for a mode. date is
// YYYY-MM-DD or empty for today.
func (r *Runner) Rankings(ctx context.Context, mode, date string) error {
	if !pixiv.ValidRankingModes[mode] {
		return fmt.Errorf("invalid ranking mode %q, valid modes are: %s", mode, rankingModeList())
	}

	slog.Info("Downloading rankings", "mode", mode, "date", date)

	illusts, err := dl.Depaginate(ctx, r.gate, r.limiter, fmt.Sprintf("%s rankings", mode),
		r.client.Ranking(mode, date),
		dl.PageOptions{ParamNames: []string{"offset"}})
	if err != nil {
		return fmt.Errorf("failed to list %s rankings: %w", mode, err)
	}

	_, err = r.processIllusts(ctx, illusts, r.policy, filepath.Join("rankings", mode))
	return err
}

func rankingModeList() string {
	modes := make([]string, 0, len(pixiv.ValidRankingModes))
	for mode := range pixiv.ValidRankingModes {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	return strings.Join(modes, ", ")
}
