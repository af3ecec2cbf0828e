package auth

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Invocation is a caller's signed request to run one contract method.
type Invocation struct {
	ID        string  `json:"id"`
	Caller    Address `json:"caller"`
	Method    string  `json:"method"`
	Payload   []byte  `json:"payload,omitempty"`
	Timestamp int64   `json:"ts"`
	Signature []byte  `json:"sig,omitempty"`
}

// NewInvocation creates an unsigned invocation with a fresh random ID.
func NewInvocation(caller Address, method string, payload []byte) Invocation {
	return Invocation{
		ID:      uuid.NewString(),
		Caller:  caller,
		Method:  method,
		Payload: payload,
	}
}

// serialize returns the JSON form of the invocation with the Signature field
// cleared so the signature is not part of the signed data.
func (inv *Invocation) serialize() ([]byte, error) {
	tmp := *inv
	tmp.Signature = nil
	return json.Marshal(tmp)
}

// Sign sets the current Unix nanosecond timestamp and signs the serialized
// invocation with priv.
func (inv *Invocation) Sign(priv ed25519.PrivateKey) error {
	inv.Timestamp = time.Now().UnixNano()
	b, err := inv.serialize()
	if err != nil {
		return err
	}
	inv.Signature = ed25519.Sign(priv, b)
	return nil
}

// VerifySignature verifies the invocation against pub. It returns an error
// only when the signature is missing or serialization fails.
func (inv *Invocation) VerifySignature(pub ed25519.PublicKey) (bool, error) {
	if len(inv.Signature) == 0 {
		return false, errors.New("missing signature")
	}
	b, err := inv.serialize()
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, b, inv.Signature), nil
}

type invocationKey struct{}

// WithInvocation returns a context carrying inv.
func WithInvocation(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

// InvocationFrom returns the invocation carried by ctx, if any.
func InvocationFrom(ctx context.Context) (Invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(Invocation)
	return inv, ok
}
