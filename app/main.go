package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"pixivdl/app/api"
	"pixivdl/app/cfg"
	"pixivdl/app/config"
	"pixivdl/app/database"
	"pixivdl/app/dl"
	"pixivdl/app/jobs"
	"pixivdl/app/pixiv"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("Command failed", "command", appCfg.Command, "error", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg) error {
	if err := os.MkdirAll(appCfg.Output, 0o755); err != nil {
		return err
	}

	defaults, err := config.NewLoader(appCfg.Output).Load()
	if err != nil {
		return err
	}

	db, err := database.NewConnection(filepath.Join(appCfg.Output, "pixiv-dl.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Debug("Database ready", "migration", version, "dirty", dirty)

	client := pixiv.NewClient(&http.Client{Timeout: 60 * time.Second}, appCfg.UserAgent)

	runner := jobs.NewRunner(jobs.RunnerOptions{
		Client:          client,
		DB:              db,
		Policy:          buildPolicy(appCfg, defaults),
		FilterBookmarks: defaults.FilterBookmarks,
		Root:            appCfg.Output,
		Limiter:         dl.NewPageLimiter(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return dispatch(ctx, appCfg, runner, db)
}

func dispatch(ctx context.Context, appCfg *cfg.Cfg, runner *jobs.Runner, db *database.DB) error {
	switch appCfg.Command {
	case "auth":
		return runner.Auth(ctx, appCfg.Auth.Positional.Username, appCfg.Auth.Positional.Password)
	case "blacklist":
		return runner.AddBlacklist(appCfg.Blacklist.UserID, appCfg.Blacklist.ArtworkID, appCfg.Blacklist.Tag)
	case "stats":
		return runner.Stats()
	case "serve":
		return serve(ctx, appCfg, db)
	}

	// Everything below talks to the remote API.
	if err := runner.EnsureAuth(ctx); err != nil {
		return err
	}

	switch appCfg.Command {
	case "bookmarks":
		return runner.Bookmarks(ctx)
	case "mirror":
		return runner.Mirror(ctx, appCfg.Mirror.Positional.UserID, appCfg.Mirror.Full)
	case "following":
		return runner.Following(ctx, appCfg.Following.Limit)
	case "tag":
		return runner.Tag(ctx, appCfg.Tag.Positional.Tag, appCfg.Tag.Limit)
	case "rankings":
		return runner.Rankings(ctx, appCfg.Rankings.Mode, appCfg.Rankings.Date)
	case "recommended":
		return runner.Recommended(ctx, appCfg.Recommended.Limit)
	case "supercrawl":
		return runner.Supercrawl(ctx, appCfg.Supercrawl.Yes)
	}

	return nil
}

// buildPolicy merges the defaults file with command-line flags, flags
// winning per field.
func buildPolicy(appCfg *cfg.Cfg, defaults *config.Defaults) dl.Policy {
	f := defaults.Filter

	policy := dl.Policy{
		AllowR18:     f.AllowR18 || appCfg.AllowR18,
		MinLewd:      coalesce(appCfg.MinLewd, f.MinLewdLevel),
		MaxLewd:      coalesce(appCfg.MaxLewd, f.MaxLewdLevel),
		MinBookmarks: coalesce(appCfg.MinBookmarks, f.MinBookmarks),
		MaxBookmarks: coalesce(appCfg.MaxBookmarks, f.MaxBookmarks),
		MaxPages:     coalesce(appCfg.MaxPages, f.MaxPages),
	}

	forbidden := appCfg.FilterTags
	if len(forbidden) == 0 {
		forbidden = f.FilteredTags
	}
	required := appCfg.RequireTags
	if len(required) == 0 {
		required = f.RequiredTags
	}
	policy.ForbiddenTags = dl.NewTagSet(forbidden)
	policy.RequiredTags = dl.NewTagSet(required)

	return policy
}

func coalesce(flag, fileDefault *int) *int {
	if flag != nil {
		return flag
	}
	return fileDefault
}

func serve(ctx context.Context, appCfg *cfg.Cfg, db *database.DB) error {
	handler := api.NewHandler(
		database.NewArtworkRepository(db),
		database.NewAuthorRepository(db),
		database.NewBookmarkRepository(db),
		filepath.Join(appCfg.Output, "raw"),
		appCfg.Version,
	)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Serve.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Gallery server listening", "port", appCfg.Serve.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down gallery server")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
