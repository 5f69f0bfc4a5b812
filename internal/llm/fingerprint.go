package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// Fingerprint identifies a normalized generation request for caching.
type Fingerprint string

// NewFingerprint hashes normalized request parameters into a stable cache
// key. Parameters are serialized as sorted key=value lines so map
// iteration order never changes the digest.
func NewFingerprint(params map[string]string) Fingerprint {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s\n", k, params[k])
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// MessageDigest condenses a conversation into a single fingerprint
// parameter value.
func MessageDigest(msgs []Message) string {
	h := sha256.New()
	for _, m := range msgs {
		fmt.Fprintf(h, "%s:%s\n", m.Role, m.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}
