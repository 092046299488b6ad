package dl

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// Project exposes an illustration mirrored under rawDir inside the view
// directory destDir via a symbolic link. If the canonical directory does
// not exist (the illustration was filtered or deleted between listing
// and mirroring) this is a silent no-op. A stale occupant at the
// destination, including a dangling link, is replaced. Idempotent.
func Project(rawDir, destDir string, artworkID int64) error {
	id := strconv.FormatInt(artworkID, 10)

	canonical := filepath.Join(rawDir, id)
	if _, err := os.Stat(canonical); err != nil {
		return nil
	}

	resolved, err := filepath.Abs(canonical)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", canonical, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create view dir %s: %w", destDir, err)
	}

	dest := filepath.Join(destDir, id)
	// Lstat, not Stat: a dangling link still occupies the path.
	if _, err := os.Lstat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to remove stale link %s: %w", dest, err)
		}
	}

	if err := os.Symlink(resolved, dest); err != nil {
		return fmt.Errorf("failed to link %s -> %s: %w", dest, resolved, err)
	}

	slog.Debug("Linked view entry", "link", dest, "target", resolved)
	return nil
}
