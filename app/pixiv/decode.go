package pixiv

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// Wire-level shapes. Required fields are pointers so a missing key can be
// told apart from a zero value; decodeIllust turns those into DecodeError
// instead of letting a half-empty Illust flow downstream.

type wireTag struct {
	Name           string  `json:"name"`
	TranslatedName *string `json:"translated_name"`
}

type wireUser struct {
	ID               *int64            `json:"id"`
	Name             string            `json:"name"`
	Account          string            `json:"account"`
	Comment          string            `json:"comment"`
	ProfileImageURLs map[string]string `json:"profile_image_urls"`
}

type wireIllust struct {
	ID             *int64     `json:"id"`
	Title          *string    `json:"title"`
	Caption        string     `json:"caption"`
	CreateDate     string     `json:"create_date"`
	User           *wireUser  `json:"user"`
	Tags           []wireTag  `json:"tags"`
	PageCount      *int       `json:"page_count"`
	SanityLevel    int        `json:"sanity_level"`
	XRestrict      int        `json:"x_restrict"`
	Restrict       int        `json:"restrict"`
	Visible        *bool      `json:"visible"`
	TotalBookmarks int        `json:"total_bookmarks"`
	TotalView      int        `json:"total_view"`
	IsBookmarked   bool       `json:"is_bookmarked"`
	MetaSinglePage struct {
		OriginalImageURL string `json:"original_image_url"`
	} `json:"meta_single_page"`
	MetaPages []struct {
		ImageURLs struct {
			Original string `json:"original"`
		} `json:"image_urls"`
	} `json:"meta_pages"`
}

func decodeUser(w *wireUser) (User, error) {
	if w == nil {
		return User{}, &DecodeError{Entity: "user", Field: "user"}
	}
	if w.ID == nil {
		return User{}, &DecodeError{Entity: "user", Field: "id"}
	}

	u := User{
		ID:      *w.ID,
		Name:    w.Name,
		Account: w.Account,
		Comment: w.Comment,
	}

	// The API offers the avatar in several sizes; any of them will do,
	// preferring the medium one it always sends.
	if url, ok := w.ProfileImageURLs["medium"]; ok {
		u.ProfileImageURL = url
	} else {
		for _, url := range w.ProfileImageURLs {
			u.ProfileImageURL = url
			break
		}
	}

	return u, nil
}

func decodeIllust(raw json.RawMessage) (Illust, error) {
	var w wireIllust
	if err := sonic.Unmarshal(raw, &w); err != nil {
		return Illust{}, fmt.Errorf("failed to unmarshal illustration: %w", err)
	}

	switch {
	case w.ID == nil:
		return Illust{}, &DecodeError{Entity: "illust", Field: "id"}
	case w.Title == nil:
		return Illust{}, &DecodeError{Entity: "illust", Field: "title"}
	case w.PageCount == nil:
		return Illust{}, &DecodeError{Entity: "illust", Field: "page_count"}
	case w.Visible == nil:
		return Illust{}, &DecodeError{Entity: "illust", Field: "visible"}
	}

	user, err := decodeUser(w.User)
	if err != nil {
		return Illust{}, err
	}

	il := Illust{
		ID:             *w.ID,
		Title:          *w.Title,
		Caption:        w.Caption,
		User:           user,
		PageCount:      *w.PageCount,
		SanityLevel:    w.SanityLevel,
		XRestrict:      w.XRestrict,
		Restrict:       w.Restrict,
		Visible:        *w.Visible,
		TotalBookmarks: w.TotalBookmarks,
		TotalView:      w.TotalView,
		IsBookmarked:   w.IsBookmarked,
		SinglePageURL:  w.MetaSinglePage.OriginalImageURL,
		Raw:            raw,
	}

	if w.CreateDate != "" {
		ts, err := time.Parse(time.RFC3339, w.CreateDate)
		if err != nil {
			return Illust{}, fmt.Errorf("failed to parse create_date %q: %w", w.CreateDate, err)
		}
		il.CreateDate = ts
	}

	for _, t := range w.Tags {
		tag := Tag{Name: t.Name}
		if t.TranslatedName != nil {
			tag.TranslatedName = *t.TranslatedName
		}
		il.Tags = append(il.Tags, tag)
	}

	for _, p := range w.MetaPages {
		il.PageURLs = append(il.PageURLs, p.ImageURLs.Original)
	}

	if il.PageCount == 1 && il.SinglePageURL == "" && il.Visible {
		return Illust{}, &DecodeError{Entity: "illust", Field: "meta_single_page.original_image_url"}
	}

	return il, nil
}

func decodeIllusts(raws []json.RawMessage) ([]Illust, error) {
	illusts := make([]Illust, 0, len(raws))
	for _, raw := range raws {
		il, err := decodeIllust(raw)
		if err != nil {
			return nil, err
		}
		illusts = append(illusts, il)
	}
	return illusts, nil
}
