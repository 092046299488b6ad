package pixiv

import (
	"encoding/json"
	"fmt"
	"time"
)

// Remote entity types

type Tag struct {
	Name           string
	TranslatedName string
}

type User struct {
	ID              int64
	Name            string
	Account         string
	Comment         string
	ProfileImageURL string
}

type UserDetail struct {
	User       User
	TwitterURL string
}

type Illust struct {
	ID             int64
	Title          string
	Caption        string
	CreateDate     time.Time
	User           User
	Tags           []Tag
	PageCount      int
	SanityLevel    int
	XRestrict      int
	Restrict       int
	Visible        bool
	TotalBookmarks int
	TotalView      int
	IsBookmarked   bool

	// Original image URL for single-page illustrations.
	SinglePageURL string
	// Original image URLs for multi-page illustrations, in page order.
	PageURLs []string

	// Raw holds the unmodified remote payload for this illustration,
	// used for the on-disk metadata snapshot.
	Raw json.RawMessage
}

type UserPreview struct {
	User    User
	Illusts []Illust
}

// Page is one batch of a paginated listing. NextURL is empty when the
// listing is exhausted.
type Page[T any] struct {
	Items   []T
	NextURL string
}

// DecodeError reports a remote payload missing a field the pipeline
// cannot operate without.
type DecodeError struct {
	Entity string
	Field  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pixiv: %s payload missing required field %q", e.Entity, e.Field)
}

// APIError is a structured error payload returned by the remote API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pixiv: API error (HTTP %d): %s", e.Status, e.Message)
}
