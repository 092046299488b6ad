package dl

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"pixivdl/app/pixiv"
)

var tagFolder = cases.Fold()

// FoldTag normalizes a tag for comparison. Tags are frequently Japanese
// or mixed-script, so plain ASCII lowercasing is not enough.
func FoldTag(tag string) string {
	return tagFolder.String(tag)
}

// NewTagSet folds a list of tag names into a lookup set.
func NewTagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		set[FoldTag(t)] = struct{}{}
	}
	return set
}

// Policy is the snapshot of accept/reject rules one job runs with. Nil
// bounds are unbounded.
type Policy struct {
	AllowR18      bool
	MinLewd       *int
	MaxLewd       *int
	ForbiddenTags map[string]struct{}
	RequiredTags  map[string]struct{}
	MinBookmarks  *int
	MaxBookmarks  *int
	MaxPages      *int

	// Unfiltered disables every rule except visibility; used for
	// unfiltered bookmark ingestion.
	Unfiltered bool
}

// BlacklistLookup checks an illustration's author id, its own id, and
// its folded tag set against the local blacklist, returning a
// description of the matched entry or "".
type BlacklistLookup func(authorID, artworkID int64, tags []string) (string, error)

// Verdict is the outcome of classifying one illustration. Exactly one
// reason is reported for a rejection, decided by rule priority.
type Verdict struct {
	Rejected bool
	Reason   string
}

func accept() Verdict {
	return Verdict{}
}

func reject(format string, args ...any) Verdict {
	return Verdict{Rejected: true, Reason: fmt.Sprintf(format, args...)}
}

// Classify decides whether an illustration passes the policy. The rule
// chain short-circuits: the first violated rule names the reason, and
// lower-priority violations are never reported. The order is load-bearing
// for anything that displays reasons; do not reorder it.
func Classify(il *pixiv.Illust, p Policy, blacklist BlacklistLookup) (Verdict, error) {
	if !il.Visible {
		return reject("illustration is not visible"), nil
	}

	if p.Unfiltered {
		return accept(), nil
	}

	if il.XRestrict != 0 && !p.AllowR18 {
		return reject("illustration is R-18"), nil
	}

	if p.MinLewd != nil && il.SanityLevel < *p.MinLewd {
		return reject("illustration lewd level (%d) is below minimum level (%d)",
			il.SanityLevel, *p.MinLewd), nil
	}
	if p.MaxLewd != nil && il.SanityLevel > *p.MaxLewd {
		return reject("illustration lewd level (%d) is above maximum level (%d)",
			il.SanityLevel, *p.MaxLewd), nil
	}

	tags := illustTags(il)

	if len(p.ForbiddenTags) > 0 {
		if matched := intersect(tags, p.ForbiddenTags); len(matched) > 0 {
			return reject("illustration contains filtered tags [%s]",
				strings.Join(matched, ", ")), nil
		}
	}

	if len(p.RequiredTags) > 0 {
		if matched := intersect(tags, p.RequiredTags); len(matched) == 0 {
			return reject("illustration missing any of the required tags [%s]",
				strings.Join(sortedKeys(p.RequiredTags), ", ")), nil
		}
	}

	if p.MaxBookmarks != nil && il.TotalBookmarks > *p.MaxBookmarks {
		return reject("illustration has too many bookmarks (%d > %d)",
			il.TotalBookmarks, *p.MaxBookmarks), nil
	}
	if p.MinBookmarks != nil && il.TotalBookmarks < *p.MinBookmarks {
		return reject("illustration doesn't have enough bookmarks (%d < %d)",
			il.TotalBookmarks, *p.MinBookmarks), nil
	}

	if p.MaxPages != nil && len(il.PageURLs) > *p.MaxPages {
		return reject("illustration has too many pages (%d > %d)",
			len(il.PageURLs), *p.MaxPages), nil
	}

	if blacklist != nil {
		matched, err := blacklist(il.User.ID, il.ID, sortedKeys(tags))
		if err != nil {
			return Verdict{}, fmt.Errorf("blacklist lookup for %d: %w", il.ID, err)
		}
		if matched != "" {
			return reject("illustration is blacklisted (%s)", matched), nil
		}
	}

	return accept(), nil
}

// illustTags folds both the canonical and translated name of every tag.
func illustTags(il *pixiv.Illust) map[string]struct{} {
	tags := make(map[string]struct{}, len(il.Tags)*2)
	for _, t := range il.Tags {
		if t.Name != "" {
			tags[FoldTag(t.Name)] = struct{}{}
		}
		if t.TranslatedName != "" {
			tags[FoldTag(t.TranslatedName)] = struct{}{}
		}
	}
	return tags
}

func intersect(a, b map[string]struct{}) []string {
	var matched []string
	for t := range a {
		if _, ok := b[t]; ok {
			matched = append(matched, t)
		}
	}
	sort.Strings(matched)
	return matched
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
