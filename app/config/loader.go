package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileName = "pixiv-dl.yml"

// starterTemplate is written to the output directory on first run so
// users have a commented file to edit.
const starterTemplate = `# Default filter settings for pixiv-dl.
# Command-line flags override anything set here.
filter:
  allow_r18: false
  # min_lewd_level: 2
  # max_lewd_level: 6
  # min_bookmarks: 100
  # max_bookmarks: 10000
  # max_pages: 20
  filtered_tags: []
  required_tags: []

# Apply the filter to the bookmarks job too (off by default).
filter_bookmarks: false
`

// Loader reads the defaults file from the output directory.
type Loader struct {
	outputDir string
}

func NewLoader(outputDir string) *Loader {
	return &Loader{outputDir: outputDir}
}

// Load reads pixiv-dl.yml, writing a commented starter file first if
// none exists yet.
func (l *Loader) Load() (*Defaults, error) {
	path := filepath.Join(l.outputDir, fileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, []byte(starterTemplate), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write starter config: %w", err)
		}
		data = []byte(starterTemplate)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var defaults Defaults
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := l.validate(&defaults); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &defaults, nil
}

func (l *Loader) validate(defaults *Defaults) error {
	f := defaults.Filter

	if f.MinLewdLevel != nil && *f.MinLewdLevel < 0 {
		return fmt.Errorf("min_lewd_level must be non-negative")
	}
	if f.MaxLewdLevel != nil && *f.MaxLewdLevel < 0 {
		return fmt.Errorf("max_lewd_level must be non-negative")
	}
	if f.MinLewdLevel != nil && f.MaxLewdLevel != nil && *f.MinLewdLevel > *f.MaxLewdLevel {
		return fmt.Errorf("min_lewd_level must not exceed max_lewd_level")
	}
	if f.MinBookmarks != nil && *f.MinBookmarks < 0 {
		return fmt.Errorf("min_bookmarks must be non-negative")
	}
	if f.MaxBookmarks != nil && *f.MaxBookmarks < 0 {
		return fmt.Errorf("max_bookmarks must be non-negative")
	}
	if f.MaxPages != nil && *f.MaxPages < 1 {
		return fmt.Errorf("max_pages must be positive")
	}

	return nil
}
