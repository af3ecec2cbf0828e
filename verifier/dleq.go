package verifier

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/proof/dleq"
	"go.dedis.ch/kyber/v4/suites"
)

var suite = suites.MustFind("Ed25519")

// wireProof is the serialized form of a DLEQ proof. Public is the prover's
// key x·G, Tag is x·H where H is derived from the statement's inputs.
type wireProof struct {
	Public []byte `json:"public"`
	Tag    []byte `json:"tag"`
	C      []byte `json:"c"`
	R      []byte `json:"r"`
	VG     []byte `json:"vg"`
	VH     []byte `json:"vh"`
}

// DLEQ verifies discrete-log equality proofs. Proofs are published into the
// verifier's book and later referenced by hash.
type DLEQ struct {
	mu   sync.RWMutex
	book map[[32]byte][]byte
}

func NewDLEQ() *DLEQ {
	return &DLEQ{book: make(map[[32]byte][]byte)}
}

// Hash returns the identifier under which proof is published.
func Hash(proof []byte) [32]byte {
	return sha256.Sum256(proof)
}

// Publish stores proof and returns its hash.
func (d *DLEQ) Publish(proof []byte) [32]byte {
	h := Hash(proof)
	stored := make([]byte, len(proof))
	copy(stored, proof)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.book[h] = stored
	return h
}

// Verify reports whether the proof published under proofHash shows that its
// public key and tag share a discrete log over the base bound to inputs.
// Unknown hashes and malformed proofs are rejected without error.
func (d *DLEQ) Verify(ctx context.Context, proofHash [32]byte, inputs [][32]byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.mu.RLock()
	raw, ok := d.book[proofHash]
	d.mu.RUnlock()
	if !ok {
		return false, nil
	}

	var w wireProof
	if err := json.Unmarshal(raw, &w); err != nil {
		return false, nil
	}
	pub, tag := suite.Point(), suite.Point()
	p := &dleq.Proof{C: suite.Scalar(), R: suite.Scalar(), VG: suite.Point(), VH: suite.Point()}
	for _, field := range []struct {
		dst interface{ UnmarshalBinary([]byte) error }
		src []byte
	}{{pub, w.Public}, {tag, w.Tag}, {p.C, w.C}, {p.R, w.R}, {p.VG, w.VG}, {p.VH, w.VH}} {
		if err := field.dst.UnmarshalBinary(field.src); err != nil {
			return false, nil
		}
	}
	if err := p.Verify(suite, suite.Point().Base(), baseFor(inputs), pub, tag); err != nil {
		return false, nil
	}
	return true, nil
}

// NewSecret draws a random prover secret.
func NewSecret() kyber.Scalar {
	return suite.Scalar().Pick(suite.RandomStream())
}

// Prove builds a serialized proof that the holder of secret endorses inputs.
func Prove(secret kyber.Scalar, inputs [][32]byte) ([]byte, error) {
	p, pub, tag, err := dleq.NewDLEQProof(suite, suite.Point().Base(), baseFor(inputs), secret)
	if err != nil {
		return nil, fmt.Errorf("dleq proof: %w", err)
	}
	var w wireProof
	for _, field := range []struct {
		dst *[]byte
		src interface{ MarshalBinary() ([]byte, error) }
	}{{&w.Public, pub}, {&w.Tag, tag}, {&w.C, p.C}, {&w.R, p.R}, {&w.VG, p.VG}, {&w.VH, p.VH}} {
		b, err := field.src.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("marshal proof: %w", err)
		}
		*field.dst = b
	}
	return json.Marshal(w)
}

// baseFor derives the second generator from the ordered inputs, binding a
// proof to exactly one statement.
func baseFor(inputs [][32]byte) kyber.Point {
	h := sha256.New()
	h.Write([]byte("proof-of-sus/dleq"))
	for _, in := range inputs {
		h.Write(in[:])
	}
	return suite.Point().Pick(suite.XOF(h.Sum(nil)))
}
