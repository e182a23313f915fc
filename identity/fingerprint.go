package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a fixed-length digest of a listing URL. The digest
// is used as the dedup key and as the journal/archive key, so raw URLs
// never end up in diagnostics or indexes.
func Fingerprint(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}
