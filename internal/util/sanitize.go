package util

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pyhumph/jriit-cms-sub001/pkg/apierror"
)

const maxItemIDLength = 128

// SanitizeItemID checks an item id taken from a request path. Ids are
// matched exactly against stored keys, so unsafe characters are rejected
// rather than stripped.
func SanitizeItemID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apierror.BadRequest("BAD_REQUEST", "item id is required", "item_id")
	}

	if !utf8.ValidString(trimmed) {
		return "", apierror.BadRequest("INVALID_ITEM_ID", "item id is not valid UTF-8", "")
	}

	if utf8.RuneCountInString(trimmed) > maxItemIDLength {
		return "", apierror.BadRequest("INVALID_ITEM_ID", "item id is too long", "")
	}

	for _, char := range trimmed {
		if char == 0 || unicode.IsControl(char) || isInvisibleUnicode(char) {
			return "", apierror.BadRequest("INVALID_ITEM_ID", "item id contains control or invisible characters", "")
		}
		if char == '/' || char == '\\' {
			return "", apierror.BadRequest("INVALID_ITEM_ID", "item id cannot contain path separators", trimmed)
		}
	}

	return trimmed, nil
}

// isInvisibleUnicode reports zero-width, formatting and other invisible
// characters.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // Zero-Width Space
		'\u200C', // Zero-Width Non-Joiner
		'\u200D', // Zero-Width Joiner
		'\u200E', // Left-to-Right Mark
		'\u200F', // Right-to-Left Mark
		'\u2060', // Word Joiner
		'\uFEFF': // Zero-Width No-Break Space / BOM
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
