package domain

import "strings"

// PageType classifies a bookmarked page, mirroring the og:type vocabulary
// this service understands. It is a closed set: anything a page declares
// outside of it is coerced to PageTypeWebsite.
type PageType string

const (
	PageTypeWebsite PageType = "website"
	PageTypeBook    PageType = "book"
	PageTypeArticle PageType = "article"
	PageTypeMusic   PageType = "music"
	PageTypeVideo   PageType = "video"
)

// PageTypes lists every valid page type.
func PageTypes() []PageType {
	return []PageType{PageTypeWebsite, PageTypeBook, PageTypeArticle, PageTypeMusic, PageTypeVideo}
}

// Valid reports whether t is a member of the closed set.
func (t PageType) Valid() bool {
	switch t {
	case PageTypeWebsite, PageTypeBook, PageTypeArticle, PageTypeMusic, PageTypeVideo:
		return true
	}
	return false
}

// ParsePageType parses a raw value case-insensitively.
// ok is false when the value is not a member of the set.
func ParsePageType(raw string) (PageType, bool) {
	t := PageType(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.Valid()
}

// CoercePageType maps a raw og:type value onto the closed set.
// Matching is case-insensitive; the stored value is always lower-case.
// Unknown or empty values default to PageTypeWebsite.
func CoercePageType(raw string) PageType {
	if t, ok := ParsePageType(raw); ok {
		return t
	}
	return PageTypeWebsite
}
