package domain

import "time"

// Bookmark is a saved page owned by a single user.
// Every field except the ones a PATCH may touch is derived by the
// extraction pipeline at creation time; page_url holds the canonical
// og:url of the page, not necessarily what the user submitted.
type Bookmark struct {
	// ID is assigned by the database at creation.
	ID uint `gorm:"primaryKey" json:"id"`

	// PageTitle and Description come from og:title / og:description.
	PageTitle   *string `gorm:"size:150" json:"page_title"`
	Description *string `gorm:"type:text" json:"description"`

	// PageURL is the canonical URL of the page (og:url). Required.
	PageURL string `gorm:"size:255;not null" json:"page_url"`

	// PageType is always a member of the closed PageType set.
	PageType PageType `gorm:"size:7;not null;default:website" json:"page_type"`

	// ImageURL is the og:image URL, if the page declared one.
	ImageURL *string `gorm:"size:255" json:"image_url"`

	// UserID is the owning user. Immutable after creation.
	UserID uint  `gorm:"not null;index" json:"user"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageMeta is the result of extracting Open Graph metadata from a page.
type PageMeta struct {
	Title        string
	Description  string
	ImageURL     string
	CanonicalURL string
	PageType     PageType
}

// BookmarkPatch carries the fields a partial update may change.
// Nil means "leave as is". PageURL and ownership are not editable and
// extraction is never re-run on update.
type BookmarkPatch struct {
	PageTitle   *string
	Description *string
	ImageURL    *string
	PageType    *PageType
}
