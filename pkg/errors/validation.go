package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds person and tree identifiers.
const maxIDLength = 256

// ValidateTreeID validates a tree identity used as a persistence key.
// Tree ids end up in file names, redis keys and URL paths, so the rules
// reject anything that could escape a directory or a key namespace:
//   - No empty ids
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateTreeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "tree id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "tree id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "tree id contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", ":"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "tree id contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidatePersonID validates a person identifier from an imported tree.
func ValidatePersonID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidTree, "person id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidTree, "person id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTree, "person id %q contains control characters", id)
		}
	}
	return nil
}
