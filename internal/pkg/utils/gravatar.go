package utils

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// GravatarURL returns the avatar URL for an email address. Addresses without
// a Gravatar account resolve to the generated "mystery person" image, so the
// result is always renderable.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
