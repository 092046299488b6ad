package pixiv

import (
	"encoding/json"
	"errors"
	"testing"
)

const sampleIllustJSON = `{
	"id": 555,
	"title": "test work",
	"caption": "a caption",
	"create_date": "2026-05-01T12:30:00+09:00",
	"user": {
		"id": 42,
		"name": "Artist",
		"account": "artist_acct",
		"profile_image_urls": {"medium": "https://i.pximg.net/user-profile/42.jpg"}
	},
	"tags": [
		{"name": "猫", "translated_name": "cat"},
		{"name": "オリジナル", "translated_name": null}
	],
	"page_count": 2,
	"sanity_level": 4,
	"x_restrict": 0,
	"restrict": 0,
	"visible": true,
	"total_bookmarks": 250,
	"total_view": 9000,
	"is_bookmarked": false,
	"meta_single_page": {},
	"meta_pages": [
		{"image_urls": {"original": "https://i.pximg.net/555_p0.png"}},
		{"image_urls": {"original": "https://i.pximg.net/555_p1.png"}}
	]
}`

func TestDecodeIllust(t *testing.T) {
	il, err := decodeIllust(json.RawMessage(sampleIllustJSON))
	if err != nil {
		t.Fatalf("decodeIllust returned error: %v", err)
	}

	if il.ID != 555 {
		t.Errorf("Expected id 555, got %d", il.ID)
	}
	if il.Title != "test work" {
		t.Errorf("Expected title 'test work', got %q", il.Title)
	}
	if il.User.ID != 42 || il.User.Account != "artist_acct" {
		t.Errorf("Unexpected user: %+v", il.User)
	}
	if il.User.ProfileImageURL != "https://i.pximg.net/user-profile/42.jpg" {
		t.Errorf("Unexpected profile image URL: %s", il.User.ProfileImageURL)
	}
	if il.CreateDate.IsZero() {
		t.Error("Expected parsed create date")
	}
	if len(il.Tags) != 2 {
		t.Fatalf("Expected 2 tags, got %d", len(il.Tags))
	}
	if il.Tags[0].TranslatedName != "cat" {
		t.Errorf("Expected translated tag, got %+v", il.Tags[0])
	}
	if il.Tags[1].TranslatedName != "" {
		t.Errorf("Null translated_name should decode as empty, got %q", il.Tags[1].TranslatedName)
	}
	if len(il.PageURLs) != 2 {
		t.Errorf("Expected 2 page URLs, got %d", len(il.PageURLs))
	}
	if len(il.Raw) == 0 {
		t.Error("Raw payload must be preserved")
	}
}

func TestDecodeIllustMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		field string
	}{
		{"missing id", `{"title": "t", "page_count": 1, "visible": true}`, "id"},
		{"missing title", `{"id": 1, "page_count": 1, "visible": true}`, "title"},
		{"missing page_count", `{"id": 1, "title": "t", "visible": true}`, "page_count"},
		{"missing visible", `{"id": 1, "title": "t", "page_count": 1}`, "visible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeIllust(json.RawMessage(tt.json))

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Expected DecodeError, got %v", err)
			}
			if decodeErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, decodeErr.Field)
			}
		})
	}
}

func TestDecodeIllustMissingUserID(t *testing.T) {
	raw := `{"id": 1, "title": "t", "page_count": 1, "visible": true,
		"meta_single_page": {"original_image_url": "u"},
		"user": {"name": "no id"}}`

	_, err := decodeIllust(json.RawMessage(raw))

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}
	if decodeErr.Entity != "user" {
		t.Errorf("Expected user entity, got %q", decodeErr.Entity)
	}
}

func TestDecodeIllustSinglePageNeedsURL(t *testing.T) {
	// A visible single-page work without its image URL is undownloadable
	// and must be rejected at decode time.
	raw := `{"id": 1, "title": "t", "page_count": 1, "visible": true,
		"user": {"id": 2}, "meta_single_page": {}}`

	_, err := decodeIllust(json.RawMessage(raw))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}

	// Invisible works legitimately come without URLs.
	raw = `{"id": 1, "title": "t", "page_count": 1, "visible": false,
		"user": {"id": 2}, "meta_single_page": {}}`

	if _, err := decodeIllust(json.RawMessage(raw)); err != nil {
		t.Errorf("Invisible work without URL should decode, got %v", err)
	}
}

func TestDecodeIllustBadCreateDate(t *testing.T) {
	raw := `{"id": 1, "title": "t", "page_count": 1, "visible": true,
		"user": {"id": 2}, "create_date": "yesterday",
		"meta_single_page": {"original_image_url": "u"}}`

	if _, err := decodeIllust(json.RawMessage(raw)); err == nil {
		t.Error("Expected error for unparseable create_date")
	}
}
