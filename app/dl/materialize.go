package dl

import "pixivdl/app/pixiv"

// DownloadablePage is one fetchable image of an illustration. Derived
// fresh from the illustration each time, never persisted.
type DownloadablePage struct {
	ArtworkID int64
	MultiPage bool
	PageNum   int
	URL       string
}

// Unit is the full set of pages for one illustration, downloaded as a
// single all-or-nothing transaction by the worker pool.
type Unit struct {
	ArtworkID int64
	Pages     []DownloadablePage
}

// Materialize expands an illustration into its downloadable pages,
// indices 1..N in page order.
func Materialize(il *pixiv.Illust) Unit {
	if il.PageCount == 1 {
		return Unit{
			ArtworkID: il.ID,
			Pages: []DownloadablePage{{
				ArtworkID: il.ID,
				MultiPage: false,
				PageNum:   1,
				URL:       il.SinglePageURL,
			}},
		}
	}

	pages := make([]DownloadablePage, 0, len(il.PageURLs))
	for i, url := range il.PageURLs {
		pages = append(pages, DownloadablePage{
			ArtworkID: il.ID,
			MultiPage: true,
			PageNum:   i + 1,
			URL:       url,
		})
	}

	return Unit{ArtworkID: il.ID, Pages: pages}
}
