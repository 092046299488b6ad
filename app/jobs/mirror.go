package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"pixivdl/app/database"
	"pixivdl/app/dl"
	"pixivdl/app/pixiv"
)

// Mirror downloads everything a user has published. With full set,
// their public bookmarks are mirrored too.
func (r *Runner) Mirror(ctx context.Context, userID int64, full bool) error {
	slog.Info("Mirroring user", "user", userID, "full", full)

	detail, err := dl.Retry(ctx, r.gate, fmt.Sprintf("user detail for %d", userID),
		func(ctx context.Context) (*pixiv.UserDetail, error) {
			return r.client.UserDetail(ctx, userID)
		})
	if err != nil {
		return fmt.Errorf("failed to fetch user %d: %w", userID, err)
	}

	author := database.Author{
		ID:          detail.User.ID,
		AccountName: detail.User.Account,
		Name:        detail.User.Name,
	}
	ext := database.AuthorExtended{
		AuthorID:   detail.User.ID,
		TwitterURL: detail.TwitterURL,
		Comment:    detail.User.Comment,
	}
	if err := r.authors.UpsertWithExtended(author, ext); err != nil {
		return fmt.Errorf("failed to store user %d: %w", userID, err)
	}

	if _, err := r.downloader.DownloadAvatar(ctx, detail.User, r.viewDir("profile_pictures")); err != nil {
		slog.Warn("Failed to download avatar", "user", userID, "error", err)
	}

	view := filepath.Join("users", strconv.FormatInt(userID, 10))

	illusts, err := dl.Depaginate(ctx, r.gate, r.limiter,
		fmt.Sprintf("works of user %d", userID),
		r.client.UserIllusts(userID),
		dl.PageOptions{ParamNames: []string{"offset"}})
	if err != nil {
		return fmt.Errorf("failed to list works of user %d: %w", userID, err)
	}

	if _, err := r.processIllusts(ctx, illusts, r.policy, view); err != nil {
		return err
	}

	if !full {
		return nil
	}

	// Only public bookmarks are visible for other users.
	marks, err := dl.Depaginate(ctx, r.gate, r.limiter,
		fmt.Sprintf("bookmarks of user %d", userID),
		r.client.UserBookmarks(userID, "public"),
		dl.PageOptions{ParamNames: []string{"max_bookmark_id"}})
	if err != nil {
		return fmt.Errorf("failed to list bookmarks of user %d: %w", userID, err)
	}

	_, err = r.processIllusts(ctx, marks, r.policy, view)
	return err
}
