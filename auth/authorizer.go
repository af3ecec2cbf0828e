package auth

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
)

var (
	ErrNoInvocation    = errors.New("no signed invocation in context")
	ErrCallerMismatch  = errors.New("invocation signed for a different caller")
	ErrMethodMismatch  = errors.New("invocation signed for a different method")
	ErrPayloadMismatch = errors.New("invocation signed for different arguments")
	ErrBadSignature    = errors.New("invalid invocation signature")
	ErrReplayedRequest = errors.New("invocation already used")
)

// Authorizer decides whether the current call may act as caller. payload is
// the encoded arguments of the call.
type Authorizer interface {
	RequireAuth(ctx context.Context, caller Address, method string, payload []byte) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, caller Address, method string, payload []byte) error

func (f AuthorizerFunc) RequireAuth(ctx context.Context, caller Address, method string, payload []byte) error {
	return f(ctx, caller, method, payload)
}

// AllowAll accepts every caller. Useful for tests and local tooling.
type AllowAll struct{}

func (AllowAll) RequireAuth(context.Context, Address, string, []byte) error { return nil }

// SignatureAuthorizer requires a signed Invocation in the context whose
// caller, method and payload match the request. It keeps no state; callers
// that need replay protection record the invocation ID themselves.
type SignatureAuthorizer struct{}

func NewSignatureAuthorizer() *SignatureAuthorizer {
	return &SignatureAuthorizer{}
}

func (a *SignatureAuthorizer) RequireAuth(ctx context.Context, caller Address, method string, payload []byte) error {
	inv, ok := InvocationFrom(ctx)
	if !ok {
		return ErrNoInvocation
	}
	if inv.Caller != caller {
		return fmt.Errorf("%w: want %s, got %s", ErrCallerMismatch, caller.Short(), inv.Caller.Short())
	}
	if inv.Method != method {
		return fmt.Errorf("%w: want %s, got %s", ErrMethodMismatch, method, inv.Method)
	}
	if !bytes.Equal(inv.Payload, payload) {
		return fmt.Errorf("%w: %s", ErrPayloadMismatch, method)
	}
	pub, err := caller.PublicKey()
	if err != nil {
		return err
	}
	valid, err := inv.VerifySignature(pub)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !valid {
		return ErrBadSignature
	}
	return nil
}

// Signer holds a caller's key pair and signs invocations for it.
type Signer struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// NewSigner generates a fresh key pair.
func NewSigner() (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Signer{pub: pub, priv: priv}, nil
}

// NewSignerFromKey wraps an existing private key.
func NewSignerFromKey(priv ed25519.PrivateKey) *Signer {
	return &Signer{pub: priv.Public().(ed25519.PublicKey), priv: priv}
}

func (s *Signer) Address() Address { return AddressFromKey(s.pub) }

// Authorize signs an invocation of method and returns a context carrying it.
func (s *Signer) Authorize(ctx context.Context, method string, payload []byte) (context.Context, error) {
	inv := NewInvocation(s.Address(), method, payload)
	if err := inv.Sign(s.priv); err != nil {
		return nil, fmt.Errorf("sign %s: %w", method, err)
	}
	return WithInvocation(ctx, inv), nil
}
