// Package uuid wraps google/uuid so every table key is a time-ordered UUIDv7.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. Keys created later sort after keys created
// earlier, which the overlap guard relies on as a creation-order tiebreak.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse returns the canonical lower-case form of s.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid reports whether s is a UUID in any accepted form.
func IsValid(s string) bool {
	return googleuuid.Validate(s) == nil
}
