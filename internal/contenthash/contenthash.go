// Package contenthash computes the change-detection digests used by the
// delta store and the file checksum used to skip unchanged exports.
package contenthash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// separator cannot appear in PDF text, so "a=b" + "c" never collides with "a=bc".
const separator = "\x1f"

// Compute hashes the significant fields in the given order.
// Null and empty values hash identically; surrounding whitespace is ignored.
// The result depends only on the values of the named fields, never on
// map iteration order or on fields outside the list.
func Compute(fields domain.Fields, significant []string) string {
	parts := make([]string, 0, len(significant))
	for _, name := range significant {
		parts = append(parts, name+"="+fields.Get(name))
	}

	digest := xxhash.New()
	_, _ = digest.WriteString(strings.Join(parts, separator))

	return hex.EncodeToString(digest.Sum(nil))
}

// File returns the xxhash digest of a file's content.
func File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
