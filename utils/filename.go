package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFileName normalizes a user-supplied file name into a safe object
// key component: NFKD normalization, combining marks stripped, every other
// character outside [a-zA-Z0-9._-] replaced with '_'. An empty input falls
// back to "file-<unix ms>".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("file-%d", time.Now().UnixMilli())
	}

	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripMarks, name); err == nil {
		name = stripped
	}

	name = unsafeFileChars.ReplaceAllString(name, "_")
	if name == "" {
		return fmt.Sprintf("file-%d", time.Now().UnixMilli())
	}
	return name
}

// BuildObjectKey produces "{prefix}{clientID}/{unix ms}-{uuid}-{sanitized name}".
// The random component is what keeps two same-named uploads in the same
// millisecond from colliding.
func BuildObjectKey(prefix, clientID, originalName string) string {
	return fmt.Sprintf("%s%s/%d-%s-%s",
		prefix, clientID, time.Now().UnixMilli(), uuid.NewString(), SanitizeFileName(originalName))
}

// NewID returns a prefixed opaque record identifier, e.g. "file_2c9d...".
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
