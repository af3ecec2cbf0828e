package amongus

import (
	"context"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
	"github.com/dev-tnsq/Proof-of-Sus/storage"
	"github.com/dev-tnsq/Proof-of-Sus/verifier"
)

// ProofGate sends proofs to the verifier whose address is stored in the
// Verifier slot.
type ProofGate struct {
	store    storage.Store
	resolver verifier.Resolver
}

func NewProofGate(store storage.Store, resolver verifier.Resolver) *ProofGate {
	return &ProofGate{store: store, resolver: resolver}
}

// VerifierAddress returns the configured verifier.
func (g *ProofGate) VerifierAddress(ctx context.Context) (auth.Address, error) {
	raw, ok, err := g.store.Get(ctx, storage.VerifierKey)
	if err != nil {
		return "", ErrStorage.wrap(err)
	}
	if !ok || len(raw) == 0 {
		return "", ErrVerifierNotConfigured
	}
	return auth.Address(raw), nil
}

// SetVerifierAddress stores addr as the verifier.
func (g *ProofGate) SetVerifierAddress(ctx context.Context, addr auth.Address) error {
	if addr == "" {
		return ErrInvalidVerifier
	}
	if err := g.store.Set(ctx, storage.VerifierKey, []byte(addr)); err != nil {
		return ErrStorage.wrap(err)
	}
	return nil
}

// Check asks the verifier about proofHash and statement. A verifier that
// cannot be reached or errors fails with ErrVerifierFailed.
func (g *ProofGate) Check(ctx context.Context, proofHash Hash, statement []Hash) (bool, error) {
	addr, err := g.VerifierAddress(ctx)
	if err != nil {
		return false, err
	}
	if g.resolver == nil {
		return false, ErrVerifierNotConfigured.withMessage("no verifier resolver")
	}
	v, err := g.resolver.Resolve(addr)
	if err != nil {
		return false, ErrVerifierFailed.wrap(err)
	}
	inputs := make([][32]byte, len(statement))
	for i, h := range statement {
		inputs[i] = h
	}
	ok, err := v.Verify(ctx, proofHash, inputs)
	if err != nil {
		return false, ErrVerifierFailed.wrap(err)
	}
	return ok, nil
}

// Require is Check with rejection turned into ErrInvalidProof. what names
// the proof in the error.
func (g *ProofGate) Require(ctx context.Context, proofHash Hash, statement []Hash, what string) error {
	ok, err := g.Check(ctx, proofHash, statement)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidProof.withMessage("invalid " + what + " proof")
	}
	return nil
}
