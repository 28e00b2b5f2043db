package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content ids. The version suffix allows the
// encoding to change without colliding with old ids.
const (
	DomainQuery    = "typeql/query/v1"
	DomainPattern  = "typeql/pattern/v1"
	DomainVariable = "typeql/variable/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte
// separates domain from data.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentID returns the hex SHA-256 id of v under domain, computed over
// its canonical JSON.
func ContentID(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ContentID: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustContentID is like ContentID but panics on error.
// Use only in tests or when v is known to be valid.
func MustContentID(domain string, v Value) string {
	id, err := ContentID(domain, v)
	if err != nil {
		panic(err)
	}
	return id
}
