package jobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"pixivdl/app/database"
	"pixivdl/app/dl"
	"pixivdl/app/pixiv"
)

// Runner wires the client, the store and the download pipeline together
// and exposes one method per subcommand.
type Runner struct {
	client     *pixiv.Client
	gate       *dl.Gate
	limiter    *rate.Limiter
	downloader *dl.Downloader
	recorder   *dl.Recorder

	artworks  *database.ArtworkRepository
	authors   *database.AuthorRepository
	bookmarks *database.BookmarkRepository
	blacklist *database.BlacklistRepository

	policy          dl.Policy
	filterBookmarks bool

	// root is the output directory; raw/ and the view directories live
	// under it.
	root string

	// confirm is read for the supercrawl prompt, os.Stdin in production.
	confirm io.Reader
	out     io.Writer
}

type RunnerOptions struct {
	Client          *pixiv.Client
	DB              *database.DB
	Policy          dl.Policy
	FilterBookmarks bool
	Root            string

	// Limiter paces listing calls; nil disables pacing (tests).
	Limiter *rate.Limiter

	Confirm io.Reader
	Out     io.Writer
}

func NewRunner(opts RunnerOptions) *Runner {
	gate := dl.NewGate(opts.Client)
	rawDir := filepath.Join(opts.Root, "raw")

	artworks := database.NewArtworkRepository(opts.DB)

	confirm := opts.Confirm
	if confirm == nil {
		confirm = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &Runner{
		client:          opts.Client,
		gate:            gate,
		limiter:         opts.Limiter,
		downloader:      dl.NewDownloader(opts.Client, gate, rawDir),
		recorder:        dl.NewRecorder(artworks, rawDir),
		artworks:        artworks,
		authors:         database.NewAuthorRepository(opts.DB),
		bookmarks:       database.NewBookmarkRepository(opts.DB),
		blacklist:       database.NewBlacklistRepository(opts.DB),
		policy:          opts.Policy,
		filterBookmarks: opts.FilterBookmarks,
		root:            opts.Root,
		confirm:         confirm,
		out:             out,
	}
}

func (r *Runner) rawDir() string {
	return filepath.Join(r.root, "raw")
}

func (r *Runner) viewDir(parts ...string) string {
	return filepath.Join(append([]string{r.root}, parts...)...)
}

// blacklistLookup adapts the blacklist repository to the filter's
// callback shape.
func (r *Runner) blacklistLookup(authorID, artworkID int64, tags []string) (string, error) {
	return r.blacklist.Match(authorID, artworkID, tags)
}

// processIllusts runs one batch of listed illustrations through the
// pipeline: classify, record, download, project into the view
// directories, avatar fan-out. Returns the accepted illustrations;
// download failures of individual units are logged, not fatal.
func (r *Runner) processIllusts(ctx context.Context, illusts []pixiv.Illust, policy dl.Policy, viewDirs ...string) ([]pixiv.Illust, error) {
	var accepted []pixiv.Illust
	for i := range illusts {
		il := &illusts[i]

		verdict, err := dl.Classify(il, policy, r.blacklistLookup)
		if err != nil {
			return nil, fmt.Errorf("failed to classify artwork %d: %w", il.ID, err)
		}
		if verdict.Rejected {
			slog.Info("Skipping artwork", "artwork", il.ID, "reason", verdict.Reason)
			continue
		}
		accepted = append(accepted, *il)
	}

	if len(accepted) == 0 {
		slog.Info("Nothing to download", "listed", len(illusts))
		return nil, nil
	}

	units := make([]dl.Unit, 0, len(accepted))
	for i := range accepted {
		if err := r.recorder.Record(&accepted[i]); err != nil {
			return nil, fmt.Errorf("failed to record artwork %d: %w", accepted[i].ID, err)
		}
		units = append(units, dl.Materialize(&accepted[i]))
	}

	failed := dl.NewPool(dl.ArtworkWorkers).Run(ctx, units, r.downloader.DownloadUnit)

	for _, il := range accepted {
		for _, view := range viewDirs {
			if err := dl.Project(r.rawDir(), r.viewDir(view), il.ID); err != nil {
				return nil, fmt.Errorf("failed to link artwork %d into %s: %w", il.ID, view, err)
			}
		}
	}

	if err := r.saveProfilePics(ctx, accepted); err != nil {
		return nil, err
	}

	slog.Info("Processed batch", "listed", len(illusts), "accepted", len(accepted), "failed", failed)

	return accepted, nil
}

// saveProfilePics downloads the avatar of every distinct author in the
// batch, with wider fan-out than artwork pages since avatars are tiny.
func (r *Runner) saveProfilePics(ctx context.Context, illusts []pixiv.Illust) error {
	users := make(map[int64]pixiv.User, len(illusts))
	for i := range illusts {
		users[illusts[i].User.ID] = illusts[i].User
	}

	units := make([]dl.Unit, 0, len(users))
	for id := range users {
		units = append(units, dl.Unit{ArtworkID: id})
	}

	dir := r.viewDir("profile_pictures")
	failed := dl.NewPool(dl.AvatarWorkers).Run(ctx, units, func(ctx context.Context, u dl.Unit) error {
		_, err := r.downloader.DownloadAvatar(ctx, users[u.ArtworkID], dir)
		return err
	})
	if failed > 0 {
		slog.Warn("Some avatars failed to download", "failed", failed)
	}

	return nil
}
