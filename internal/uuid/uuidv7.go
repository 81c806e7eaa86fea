// Package uuid generates and checks the string identifiers used as primary keys.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a time-ordered UUIDv7 string, falling back to a random v4 if
// the v7 generator fails.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.NewString()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}

// AllValid reports whether every id in ids is a valid UUID.
func AllValid(ids []string) bool {
	for _, id := range ids {
		if !IsValid(id) {
			return false
		}
	}
	return true
}
