package auth

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// Address is an opaque caller identity.
type Address string

// AddressFromKey returns the address owned by pub.
func AddressFromKey(pub ed25519.PublicKey) Address {
	return Address(hex.EncodeToString(pub))
}

// PublicKey decodes the ed25519 key behind a. Addresses that were not
// derived from a key fail to decode.
func (a Address) PublicKey() (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(string(a))
	if err != nil {
		return nil, fmt.Errorf("address %q is not hex: %w", a.Short(), err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("address %q has %d bytes, want %d", a.Short(), len(raw), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(raw), nil
}

// Short returns a log-friendly prefix of the address.
func (a Address) Short() string {
	if len(a) <= 12 {
		return string(a)
	}
	return string(a[:8]) + ".." + string(a[len(a)-4:])
}

func (a Address) String() string { return string(a) }
