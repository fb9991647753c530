// Package privacy keeps raw network origins out of logs and durable records.
package privacy

import (
	"encoding/hex"
	"errors"
	"net/netip"

	"golang.org/x/crypto/blake2b"
)

// AnonymizeIP truncates an address to its network prefix (/24 for IPv4, /48
// for IPv6) so logs can correlate traffic without holding the full address.
func AnonymizeIP(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	bits := 48
	if addr.Is4() || addr.Is4In6() {
		addr = addr.Unmap()
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.String()
}

var errKeySize = errors.New("origin hash key must be at most 64 bytes")

// OriginHasher produces one-way digests of origins for audit records.
type OriginHasher struct {
	key []byte
}

// NewOriginHasher builds a hasher. A non-empty key turns the digest into a
// keyed MAC so the small IPv4 space cannot be brute-forced from a leaked table.
func NewOriginHasher(key string) (*OriginHasher, error) {
	if len(key) > blake2b.Size {
		return nil, errKeySize
	}
	return &OriginHasher{key: []byte(key)}, nil
}

// Hash returns the hex BLAKE2b-256 digest of origin. An empty origin hashes as
// "unknown" so records always carry a digest.
func (h *OriginHasher) Hash(origin string) string {
	if origin == "" {
		origin = "unknown"
	}
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// key length is validated in NewOriginHasher
		panic(err)
	}
	mac.Write([]byte(origin))
	return hex.EncodeToString(mac.Sum(nil))
}
