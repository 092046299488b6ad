package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	Output    string `short:"o" long:"output" env:"OUTPUT" default:"./output" description:"The directory artworks are downloaded into"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"pixiv-dl/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	AllowR18     bool     `long:"allow-r18" description:"Download R-18 works too"`
	MinLewd      *int     `long:"min-lewd-level" description:"The minimum 'lewd level' of works to download"`
	MaxLewd      *int     `long:"max-lewd-level" description:"The maximum 'lewd level' of works to download"`
	MinBookmarks *int     `long:"min-bookmarks" description:"Skip works with fewer bookmarks than this"`
	MaxBookmarks *int     `long:"max-bookmarks" description:"Skip works with more bookmarks than this"`
	MaxPages     *int     `long:"max-pages" description:"Skip works with more pages than this"`
	FilterTags   []string `long:"filter-tag" description:"Skip works with this tag (repeatable)"`
	RequireTags  []string `long:"require-tag" description:"Skip works missing all of these tags (repeatable)"`

	Auth        AuthCmd        `command:"auth" description:"Log in to Pixiv and store the refresh token"`
	Bookmarks   BookmarksCmd   `command:"bookmarks" description:"Download your bookmarks"`
	Mirror      MirrorCmd      `command:"mirror" description:"Mirror a user's works"`
	Following   FollowingCmd   `command:"following" description:"Download your following feed"`
	Tag         TagCmd         `command:"tag" description:"Download works for a tag"`
	Rankings    RankingsCmd    `command:"rankings" description:"Download the current rankings"`
	Recommended RecommendedCmd `command:"recommended" description:"Download recommended works"`
	Supercrawl  SupercrawlCmd  `command:"supercrawl" description:"Mirror every user you follow"`
	Blacklist   BlacklistCmd   `command:"blacklist" description:"Blacklist an author, artwork or tag"`
	Stats       StatsCmd       `command:"stats" description:"Print statistics about the archive"`
	Serve       ServeCmd       `command:"serve" description:"Serve the gallery web UI"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Output:       raw.Output,
		UserAgent:    raw.UserAgent,
		Debug:        raw.Debug,
		Version:      GetVersion(),
		AllowR18:     raw.AllowR18,
		MinLewd:      raw.MinLewd,
		MaxLewd:      raw.MaxLewd,
		MinBookmarks: raw.MinBookmarks,
		MaxBookmarks: raw.MaxBookmarks,
		MaxPages:     raw.MaxPages,
		FilterTags:   raw.FilterTags,
		RequireTags:  raw.RequireTags,
	}

	if parser.Active == nil {
		return nil, fmt.Errorf("no command given, see --help for usage")
	}
	cfg.Command = parser.Active.Name

	switch cfg.Command {
	case "auth":
		cfg.Auth = &raw.Auth
	case "bookmarks":
		cfg.Bookmarks = &raw.Bookmarks
	case "mirror":
		cfg.Mirror = &raw.Mirror
	case "following":
		cfg.Following = &raw.Following
	case "tag":
		cfg.Tag = &raw.Tag
	case "rankings":
		cfg.Rankings = &raw.Rankings
	case "recommended":
		cfg.Recommended = &raw.Recommended
	case "supercrawl":
		cfg.Supercrawl = &raw.Supercrawl
	case "blacklist":
		cfg.Blacklist = &raw.Blacklist
	case "stats":
		cfg.Stats = &raw.Stats
	case "serve":
		cfg.Serve = &raw.Serve
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
