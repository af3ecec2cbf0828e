package storage

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// KeyKind identifies one of the contract's storage slots.
type KeyKind uint8

const (
	KindAdmin KeyKind = iota + 1
	KindVerifier
	KindConfig
	KindGameState
	KindPlayers
	KindUsedNullifier
	KindUsedInvocation
	KindBlock
)

func (k KeyKind) String() string {
	switch k {
	case KindAdmin:
		return "admin"
	case KindVerifier:
		return "verifier"
	case KindConfig:
		return "config"
	case KindGameState:
		return "game_state"
	case KindPlayers:
		return "players"
	case KindUsedNullifier:
		return "used_nullifier"
	case KindUsedInvocation:
		return "used_invocation"
	case KindBlock:
		return "block"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Key is a typed storage key. Token is only meaningful for the token kinds
// (KindUsedNullifier, KindUsedInvocation and KindBlock).
type Key struct {
	Kind  KeyKind
	Token [32]byte
}

var (
	AdminKey     = Key{Kind: KindAdmin}
	VerifierKey  = Key{Kind: KindVerifier}
	ConfigKey    = Key{Kind: KindConfig}
	GameStateKey = Key{Kind: KindGameState}
	PlayersKey   = Key{Kind: KindPlayers}
)

// UsedNullifier returns the key marking token as consumed.
func UsedNullifier(token [32]byte) Key {
	return Key{Kind: KindUsedNullifier, Token: token}
}

// UsedInvocation returns the key marking a signed invocation ID as consumed.
func UsedInvocation(id string) Key {
	return Key{Kind: KindUsedInvocation, Token: sha256.Sum256([]byte(id))}
}

// BlockKey returns the key of the journal block at index.
func BlockKey(index uint64) Key {
	k := Key{Kind: KindBlock}
	binary.BigEndian.PutUint64(k.Token[:8], index)
	return k
}

// BlockIndex returns the journal index encoded in a KindBlock key.
func (k Key) BlockIndex() uint64 {
	return binary.BigEndian.Uint64(k.Token[:8])
}

// String returns the canonical storage name, e.g. "players",
// "used_nullifier/0a0b..." or "block/7".
func (k Key) String() string {
	switch k.Kind {
	case KindUsedNullifier, KindUsedInvocation:
		return k.Kind.String() + "/" + hex.EncodeToString(k.Token[:])
	case KindBlock:
		return k.Kind.String() + "/" + strconv.FormatUint(k.BlockIndex(), 10)
	}
	return k.Kind.String()
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	name, token, hasToken := strings.Cut(s, "/")
	for kind := KindAdmin; kind <= KindBlock; kind++ {
		if kind.String() != name {
			continue
		}
		switch kind {
		case KindUsedNullifier, KindUsedInvocation:
			raw, err := hex.DecodeString(token)
			if err != nil || len(raw) != 32 {
				return Key{}, fmt.Errorf("key %q: invalid token", s)
			}
			k := Key{Kind: kind}
			copy(k.Token[:], raw)
			return k, nil
		case KindBlock:
			index, err := strconv.ParseUint(token, 10, 64)
			if err != nil {
				return Key{}, fmt.Errorf("key %q: invalid block index", s)
			}
			return BlockKey(index), nil
		}
		if hasToken {
			return Key{}, fmt.Errorf("key %q: unexpected token", s)
		}
		return Key{Kind: kind}, nil
	}
	return Key{}, fmt.Errorf("unknown key %q", s)
}

// Store is the persistence the contract reads and writes. Values are opaque
// encoded blobs.
type Store interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key Key) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// Has reports whether key holds a value.
	Has(ctx context.Context, key Key) (bool, error)
}

// Write is one staged key/value assignment.
type Write struct {
	Key   Key
	Value []byte
}

// Applier is implemented by stores that can persist a whole write set
// atomically.
type Applier interface {
	Apply(ctx context.Context, writes []Write) error
}
