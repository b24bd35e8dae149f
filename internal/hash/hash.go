// Package hash derives short stable digests used in file and key names.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestLength is the number of hex characters Short returns.
const DigestLength = 12

// Short returns the first DigestLength hex characters of the SHA-256 of s.
func Short(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:DigestLength]
}
