package pixiv

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// ListingFunc is one paginatable remote listing call. The paginator
// invokes it repeatedly, feeding continuation parameters extracted from
// the previous page's NextURL.
type ListingFunc[T any] func(ctx context.Context, params url.Values) (*Page[T], error)

// ValidRankingModes is the closed set of ranking modes the API accepts.
var ValidRankingModes = map[string]bool{
	"day":            true,
	"day_male":       true,
	"day_female":     true,
	"day_male_r18":   true,
	"day_female_r18": true,
	"week":           true,
	"week_original":  true,
	"week_rookie":    true,
	"week_r18":       true,
	"week_r18g":      true,
	"month":          true,
}

type illustListing struct {
	Illusts []json.RawMessage `json:"illusts"`
	NextURL string            `json:"next_url"`
}

func (c *Client) illustListing(ctx context.Context, path string, base url.Values, params url.Values) (*Page[Illust], error) {
	query := url.Values{}
	for k, vs := range base {
		query[k] = vs
	}
	for k, vs := range params {
		query[k] = vs
	}

	var raw illustListing
	if err := c.get(ctx, path, query, &raw); err != nil {
		return nil, err
	}

	illusts, err := decodeIllusts(raw.Illusts)
	if err != nil {
		return nil, err
	}

	return &Page[Illust]{Items: illusts, NextURL: raw.NextURL}, nil
}

// UserBookmarks lists a user's bookmarked illustrations. restrict is
// "public" or "private".
func (c *Client) UserBookmarks(userID int64, restrict string) ListingFunc[Illust] {
	base := url.Values{
		"user_id":  {strconv.FormatInt(userID, 10)},
		"restrict": {restrict},
	}
	return func(ctx context.Context, params url.Values) (*Page[Illust], error) {
		return c.illustListing(ctx, "/v1/user/bookmarks/illust", base, params)
	}
}

// UserIllusts lists a user's own works.
func (c *Client) UserIllusts(userID int64) ListingFunc[Illust] {
	base := url.Values{
		"user_id": {strconv.FormatInt(userID, 10)},
		"type":    {"illust"},
	}
	return func(ctx context.Context, params url.Values) (*Page[Illust], error) {
		return c.illustListing(ctx, "/v1/user/illusts", base, params)
	}
}

// FollowFeed lists new works from followed users.
func (c *Client) FollowFeed() ListingFunc[Illust] {
	base := url.Values{"restrict": {"all"}}
	return func(ctx context.Context, params url.Values) (*Page[Illust], error) {
		return c.illustListing(ctx, "/v2/illust/follow", base, params)
	}
}

// SearchIllusts lists works matching a tag search.
func (c *Client) SearchIllusts(word string) ListingFunc[Illust] {
	base := url.Values{
		"word":          {word},
		"search_target": {"partial_match_for_tags"},
		"sort":          {"date_desc"},
	}
	return func(ctx context.Context, params url.Values) (*Page[Illust], error) {
		return c.illustListing(ctx, "/v1/search/illust", base, params)
	}
}

// Ranking lists a ranking board. date may be empty for today's board.
func (c *Client) Ranking(mode, date string) ListingFunc[Illust] {
	base := url.Values{"mode": {mode}}
	if date != "" {
		base.Set("date", date)
	}
	return func(ctx context.Context, params url.Values) (*Page[Illust], error) {
		return c.illustListing(ctx, "/v1/illust/ranking", base, params)
	}
}

// Recommended lists the recommendation feed.
func (c *Client) Recommended() ListingFunc[Illust] {
	base := url.Values{"include_ranking_illusts": {"true"}}
	return func(ctx context.Context, params url.Values) (*Page[Illust], error) {
		return c.illustListing(ctx, "/v1/illust/recommended", base, params)
	}
}

type userPreviewListing struct {
	UserPreviews []struct {
		User    *wireUser         `json:"user"`
		Illusts []json.RawMessage `json:"illusts"`
	} `json:"user_previews"`
	NextURL string `json:"next_url"`
}

// Following lists the accounts a user follows.
func (c *Client) Following(userID int64) ListingFunc[UserPreview] {
	base := url.Values{
		"user_id":  {strconv.FormatInt(userID, 10)},
		"restrict": {"public"},
	}
	return func(ctx context.Context, params url.Values) (*Page[UserPreview], error) {
		query := url.Values{}
		for k, vs := range base {
			query[k] = vs
		}
		for k, vs := range params {
			query[k] = vs
		}

		var raw userPreviewListing
		if err := c.get(ctx, "/v1/user/following", query, &raw); err != nil {
			return nil, err
		}

		page := &Page[UserPreview]{NextURL: raw.NextURL}
		for _, p := range raw.UserPreviews {
			user, err := decodeUser(p.User)
			if err != nil {
				return nil, err
			}
			illusts, err := decodeIllusts(p.Illusts)
			if err != nil {
				return nil, err
			}
			page.Items = append(page.Items, UserPreview{User: user, Illusts: illusts})
		}

		return page, nil
	}
}

type userDetailResponse struct {
	User    *wireUser `json:"user"`
	Profile struct {
		TwitterURL string `json:"twitter_url"`
	} `json:"profile"`
}

// UserDetail fetches a user's profile, including the extended fields the
// listing payloads omit.
func (c *Client) UserDetail(ctx context.Context, userID int64) (*UserDetail, error) {
	query := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}

	var raw userDetailResponse
	if err := c.get(ctx, "/v1/user/detail", query, &raw); err != nil {
		return nil, err
	}

	user, err := decodeUser(raw.User)
	if err != nil {
		return nil, err
	}

	return &UserDetail{User: user, TwitterURL: raw.Profile.TwitterURL}, nil
}
