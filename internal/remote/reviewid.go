package remote

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

// reviewIDPattern is the identifier constraint enforced by the hosted
// review API.
var reviewIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{8,64}$`)

// ValidReviewID reports whether id satisfies the hosted endpoint's
// character set and length constraints.
func ValidReviewID(id string) bool {
	return reviewIDPattern.MatchString(id)
}

var prefixCleaner = regexp.MustCompile(`[^a-z0-9-]+`)

// DeriveReviewID produces a deterministic review identifier from a
// file's name and identifier: a sanitized readable prefix plus an
// FNV-1a hash of the file id. Two clients referencing the same file
// without an explicit review id agree on the derived one.
func DeriveReviewID(fileName, fileID string) string {
	prefix := strings.ToLower(fileName)
	if i := strings.LastIndex(prefix, "."); i > 0 {
		prefix = prefix[:i] // drop extension
	}
	prefix = prefixCleaner.ReplaceAllString(prefix, "-")
	prefix = strings.Trim(prefix, "-")
	if len(prefix) > 40 {
		prefix = prefix[:40]
	}
	if prefix == "" {
		prefix = "review"
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(fileID))
	return fmt.Sprintf("%s-%016x", prefix, h.Sum64())
}
