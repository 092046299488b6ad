package cfg

// Cfg is the resolved process configuration: global flags plus the
// selected subcommand and its options.
type Cfg struct {
	Output    string
	UserAgent string
	Debug     bool
	Version   string

	// Filter policy overrides; nil means "not set on the command line",
	// letting the defaults file supply a value.
	AllowR18     bool
	MinLewd      *int
	MaxLewd      *int
	MinBookmarks *int
	MaxBookmarks *int
	MaxPages     *int
	FilterTags   []string
	RequireTags  []string

	// Command is the name of the selected subcommand.
	Command string

	Auth        *AuthCmd
	Bookmarks   *BookmarksCmd
	Mirror      *MirrorCmd
	Following   *FollowingCmd
	Tag         *TagCmd
	Rankings    *RankingsCmd
	Recommended *RecommendedCmd
	Supercrawl  *SupercrawlCmd
	Blacklist   *BlacklistCmd
	Stats       *StatsCmd
	Serve       *ServeCmd
}

type AuthCmd struct {
	Positional struct {
		Username string `positional-arg-name:"username" required:"yes" description:"Username to log in with"`
		Password string `positional-arg-name:"password" required:"yes" description:"Password associated with username"`
	} `positional-args:"yes"`
}

type BookmarksCmd struct{}

type MirrorCmd struct {
	Full       bool `short:"f" long:"full" description:"Also mirror the user's bookmarks"`
	Positional struct {
		UserID int64 `positional-arg-name:"user-id" required:"yes" description:"The user ID to mirror"`
	} `positional-args:"yes"`
}

type FollowingCmd struct {
	Limit int `short:"l" long:"limit" default:"500" description:"The maximum number of items to download"`
}

type TagCmd struct {
	Limit      int `short:"l" long:"limit" default:"500" description:"The maximum number of items to download"`
	Positional struct {
		Tag string `positional-arg-name:"tag" required:"yes" description:"The tag to download works for"`
	} `positional-args:"yes"`
}

type RankingsCmd struct {
	Mode string `short:"m" long:"mode" default:"day" description:"The ranking mode to download"`
	Date string `long:"date" description:"The date to download rankings for, defaults to today"`
}

type RecommendedCmd struct {
	Limit int `short:"l" long:"limit" default:"500" description:"The maximum number of items to download"`
}

type SupercrawlCmd struct {
	Yes bool `short:"y" long:"yes" description:"Skip the confirmation prompt"`
}

type BlacklistCmd struct {
	UserID    *int64  `short:"u" long:"user-id" description:"The user ID to blacklist"`
	ArtworkID *int64  `short:"a" long:"artwork-id" description:"The artwork ID to blacklist"`
	Tag       *string `short:"t" long:"tag" description:"The tag to blacklist"`
}

type StatsCmd struct{}

type ServeCmd struct {
	Port string `short:"p" long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
}
