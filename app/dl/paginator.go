package dl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"pixivdl/app/pixiv"
)

// Runaway guard; 9999 pages at 30 items each is ~300k items, far past
// anything the listings actually hold.
const maxListingPages = 9999

// PageInterval is the pacing between listing calls the upstream rate
// limit expects.
const PageInterval = 1500 * time.Millisecond

// NewPageLimiter returns the limiter Depaginate should be given in
// production.
func NewPageLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(PageInterval), 1)
}

// PageOptions controls one depagination.
type PageOptions struct {
	// ParamNames are the continuation parameters this listing paginates
	// on, extracted from each page's next URL.
	ParamNames []string
	// MaxItems stops the depagination once at least this many items have
	// accumulated. 0 means exhaust the listing.
	MaxItems int
	// Initial seeds the first call's continuation parameters.
	Initial url.Values
}

// Depaginate exhaustively follows a listing's continuation cursor and
// returns all items in listing order. Pagination is strictly sequential:
// each cursor is only known once the previous page has arrived. A page
// failure past the retry gate fails the whole call; nothing partial is
// returned.
func Depaginate[T any](ctx context.Context, g *Gate, limiter *rate.Limiter, name string, call pixiv.ListingFunc[T], opts PageOptions) ([]T, error) {
	params := opts.Initial
	var items []T

	for pageNum := 1; pageNum <= maxListingPages; pageNum++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		slog.Debug("Fetching listing page", "listing", name, "page", pageNum, "params", params.Encode())

		page, err := Retry(ctx, g, name, func(ctx context.Context) (*pixiv.Page[T], error) {
			return call(ctx, params)
		})
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", pageNum, name, err)
		}

		items = append(items, page.Items...)
		slog.Info("Fetched listing page", "listing", name, "page", pageNum,
			"items", len(page.Items), "tally", len(items))

		if opts.MaxItems > 0 && len(items) >= opts.MaxItems {
			return items, nil
		}
		if page.NextURL == "" {
			return items, nil
		}

		next, err := url.Parse(page.NextURL)
		if err != nil {
			return nil, fmt.Errorf("invalid next URL for %s: %w", name, err)
		}

		query := next.Query()
		params = url.Values{}
		for _, pname := range opts.ParamNames {
			if v := query.Get(pname); v != "" {
				params.Set(pname, v)
			}
		}
	}

	return items, nil
}
