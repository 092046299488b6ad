package jobs

import (
	"fmt"
	"log/slog"

	"pixivdl/app/database"
)

// AddBlacklist records a blacklist entry. Works matching any entry are
// skipped by every subsequent download job.
func (r *Runner) AddBlacklist(authorID, artworkID *int64, tag *string) error {
	entry := database.BlacklistEntry{
		AuthorID:  authorID,
		ArtworkID: artworkID,
		Tag:       tag,
	}

	if err := r.blacklist.Add(entry); err != nil {
		return fmt.Errorf("failed to add blacklist entry: %w", err)
	}

	slog.Info("Added blacklist entry",
		"author", ptrVal(authorID), "artwork", ptrVal(artworkID), "tag", strVal(tag))
	return nil
}

func ptrVal(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func strVal(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
