// Package ident allocates opaque, category-prefixed entity identifiers.
// Every row in a world database is keyed by one of these strings; the
// prefix lets downstream tooling recover an entity's category even when
// the stored type tag is missing or malformed.
package ident

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a process-wide-unique identifier of the form
// "{category}_{uuid}". Uniqueness is structural (128 random bits), so
// there is no collision detection and no persistence.
func New(category string) string {
	if category == "" {
		return uuid.NewString()
	}
	return category + "_" + uuid.NewString()
}

// Category recovers the category prefix from an identifier produced by
// New. Returns "" for unprefixed identifiers.
func Category(id string) string {
	idx := strings.LastIndexByte(id, '_')
	if idx <= 0 {
		return ""
	}
	// The suffix must look like a UUID; a bare "weapon_9" style id is
	// not ours and gets no category.
	if _, err := uuid.Parse(id[idx+1:]); err != nil {
		return ""
	}
	return id[:idx]
}
