package config

// Defaults holds the filter settings read from pixiv-dl.yml in the
// output directory. Command-line flags take precedence over these;
// pointer fields distinguish "not set" from an explicit zero.
type Defaults struct {
	Filter struct {
		AllowR18     bool     `yaml:"allow_r18"`
		MinLewdLevel *int     `yaml:"min_lewd_level"`
		MaxLewdLevel *int     `yaml:"max_lewd_level"`
		MinBookmarks *int     `yaml:"min_bookmarks"`
		MaxBookmarks *int     `yaml:"max_bookmarks"`
		MaxPages     *int     `yaml:"max_pages"`
		FilteredTags []string `yaml:"filtered_tags"`
		RequiredTags []string `yaml:"required_tags"`
	} `yaml:"filter"`

	// FilterBookmarks applies the filter policy to the bookmarks job as
	// well; by default bookmarks are downloaded unfiltered.
	FilterBookmarks bool `yaml:"filter_bookmarks"`
}
