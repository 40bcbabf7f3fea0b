package rediscache

import "strconv"

const (
	// KeyPrefixListing is the prefix for per-user bookmark listing keys
	KeyPrefixListing = "marks:bookmarks:user:"
)

// ListingKey returns the cache key holding a user's bookmark listing
func ListingKey(userID uint) string {
	return KeyPrefixListing + strconv.FormatUint(uint64(userID), 10)
}
