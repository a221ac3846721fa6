// Package avatar chooses a default profile image for accounts that never
// uploaded one.  Selection is a pure function of a seed string (normally the
// account email) so the same account always gets the same picture, across
// requests and across process restarts.
package avatar

import (
	"strings"
	"unicode/utf16"
)

// defaultDir is the storage namespace holding the stock avatar files.
const defaultDir = "default-avatars"

// uploadsPrefix is the public root under which all stored paths are served.
const uploadsPrefix = "/uploads/"

// fallbackSeed is hashed when the seed is empty so that even an account with
// no email lands on a stable catalog entry.
const fallbackSeed = "default"

// catalog lists the stock avatar files in a fixed order.  The order matters:
// the hash of a seed indexes into this slice, so reordering entries would
// silently reassign avatars to existing accounts.
var catalog = []string{
	"avatar-01.png",
	"avatar-02.png",
	"avatar-03.png",
	"avatar-04.png",
	"avatar-05.png",
	"avatar-06.png",
	"avatar-07.png",
	"avatar-08.png",
	"avatar-09.png",
	"avatar-10.png",
	"avatar-11.png",
}

// hashSeed computes a 32-bit multiplicative polynomial hash over the UTF-16
// code units of s (h = h*31 + unit, wrapping unsigned).  Hashing units, not
// codepoints, keeps assignments stable for accounts whose seeds predate this
// implementation.  No randomness, no salt.
func hashSeed(s string) uint32 {
	var h uint32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(u)
	}
	return h
}

// DefaultPath returns the catalog path assigned to seed.
func DefaultPath(seed string) string {
	if seed == "" {
		seed = fallbackSeed
	}
	idx := hashSeed(seed) % uint32(len(catalog))
	return defaultDir + "/" + catalog[idx]
}

// Resolve returns the effective avatar path for a profile.  A stored path
// wins over the computed default; it is normalized so the result is always a
// relative path regardless of whether a redundant uploads root was persisted.
func Resolve(storedPath, seed string) string {
	p := strings.TrimSpace(storedPath)
	p = strings.TrimPrefix(p, uploadsPrefix)
	p = strings.TrimPrefix(p, "uploads/")
	if p != "" {
		return p
	}
	return DefaultPath(seed)
}

// URL builds the public URL for a profile image from its stored path, falling
// back to the deterministic default when no path is set.
func URL(storedPath, seed string) string {
	return uploadsPrefix + Resolve(storedPath, seed)
}

// IsCustomUpload reports whether a stored path points at a user-uploaded
// image rather than a shared catalog entry.  Only custom uploads are removed
// from the blob store when an account is deleted.
func IsCustomUpload(storedPath string) bool {
	return strings.HasPrefix(Resolve(storedPath, ""), "profile-images/")
}

// CatalogSize exposes the number of stock avatars, mainly for tests.
func CatalogSize() int { return len(catalog) }
