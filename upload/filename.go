package upload

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	// unsafeChars matches every rune that is stripped from an original
	// filename. ASCII letters and digits, the Hebrew block, whitespace,
	// hyphen and underscore survive; everything else (including dots and
	// path separators) is removed, so no traversal sequence can reach the
	// stored name.
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\x{0590}-\x{05FF}\s\-_]+`)

	// safeExt accepts a plain lower-cased extension such as ".jpg"
	safeExt = regexp.MustCompile(`^\.[a-z0-9]+$`)
)

// GenerateName derives a storage filename from the client-supplied original
// name: sanitized base, a unix-millisecond timestamp, a random integer in
// [0, 1e9), and the lower-cased original extension. Uniqueness is
// probabilistic; two uploads in the same millisecond collide only if they
// also draw the same random suffix.
func GenerateName(originalName string) string {
	base := filepath.Base(originalName)
	ext := strings.ToLower(filepath.Ext(base))
	if !safeExt.MatchString(ext) {
		ext = ""
	}

	clean := unsafeChars.ReplaceAllString(strings.TrimSuffix(base, filepath.Ext(base)), "")
	suffix := fmt.Sprintf("%d-%d", time.Now().UnixMilli(), rand.Int63n(1_000_000_000))

	return fmt.Sprintf("%s-%s%s", clean, suffix, ext)
}
