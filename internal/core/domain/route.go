package domain

import "strings"

// OwnerPlaceholder in a route path template expands to the owning entity's
// display name, e.g. ["Fleet", "{owner}", "Certificates"].
const OwnerPlaceholder = "{owner}"

// CategoryRoute is the per-category filing policy: where documents go, and
// how oversized ones are chunked. Loaded from configuration; the hierarchy
// identifiers themselves are never hardcoded.
type CategoryRoute struct {
	// PathSegments is the logical destination path under the storage root.
	PathSegments []string
	// CreateMissing allows auto-creation of absent path segments.
	CreateMissing bool
	// Chunk carries the split threshold and chunk size for this category.
	Chunk ChunkPolicy
	// CredentialClass selects which gateway credentials serve this category.
	CredentialClass string
}

// ExpandPath substitutes the owner placeholder into the path template.
func (r CategoryRoute) ExpandPath(ownerName string) []string {
	out := make([]string, len(r.PathSegments))
	for i, seg := range r.PathSegments {
		out[i] = strings.ReplaceAll(seg, OwnerPlaceholder, ownerName)
	}
	return out
}

// RouteTable maps each document category to its filing policy.
type RouteTable map[DocumentCategory]CategoryRoute
