package jobs

import (
	"fmt"

	"pixivdl/app/dl"
)

// Stats prints archive statistics: what the raw mirror holds on disk
// and what the store has recorded.
func (r *Runner) Stats() error {
	stats, err := dl.CollectStats(r.rawDir())
	if err != nil {
		return fmt.Errorf("failed to collect mirror stats: %w", err)
	}

	recorded, err := r.artworks.CountArtworks()
	if err != nil {
		return fmt.Errorf("failed to count recorded artworks: %w", err)
	}

	fmt.Fprintf(r.out, "Mirrored objects:  %d\n", stats.Objects)
	fmt.Fprintf(r.out, "Expected pages:    %d\n", stats.Pages)
	fmt.Fprintf(r.out, "Files on disk:     %d\n", stats.Files)
	fmt.Fprintf(r.out, "Complete objects:  %d\n", stats.Complete)
	fmt.Fprintf(r.out, "Recorded in store: %d\n", recorded)

	return nil
}
