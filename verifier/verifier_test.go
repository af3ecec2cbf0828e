package verifier

import (
	"context"
	"errors"
	"testing"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
)

func TestNonZero(t *testing.T) {
	ctx := context.Background()
	ok, err := NonZero{}.Verify(ctx, [32]byte{}, nil)
	if err != nil || ok {
		t.Fatalf("zero hash should be rejected: ok=%v err=%v", ok, err)
	}
	ok, err = NonZero{}.Verify(ctx, [32]byte{1}, [][32]byte{{2}})
	if err != nil || !ok {
		t.Fatalf("non-zero hash should be accepted: ok=%v err=%v", ok, err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Resolve("v1"); !errors.Is(err, ErrUnknownVerifier) {
		t.Fatalf("expected ErrUnknownVerifier, got %v", err)
	}
	r.Register(auth.Address("v1"), NonZero{})
	v, err := r.Resolve("v1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := v.(NonZero); !ok {
		t.Fatalf("unexpected verifier %T", v)
	}
}

// TestDLEQAcceptsMatchingStatement verifies a published proof against the
// inputs it was built for.
func TestDLEQAcceptsMatchingStatement(t *testing.T) {
	ctx := context.Background()
	inputs := [][32]byte{{7}, {8}, {9}}
	proof, err := Prove(NewSecret(), inputs)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	d := NewDLEQ()
	h := d.Publish(proof)
	if h != Hash(proof) {
		t.Fatal("publish should return the proof hash")
	}
	ok, err := d.Verify(ctx, h, inputs)
	if err != nil || !ok {
		t.Fatalf("valid proof rejected: ok=%v err=%v", ok, err)
	}
}

// TestDLEQRejectsOtherInputs verifies that a proof cannot be replayed for a
// different statement, e.g. with another nullifier.
func TestDLEQRejectsOtherInputs(t *testing.T) {
	ctx := context.Background()
	proof, err := Prove(NewSecret(), [][32]byte{{1}, {2}})
	if err != nil {
		t.Fatal(err)
	}
	d := NewDLEQ()
	h := d.Publish(proof)
	ok, err := d.Verify(ctx, h, [][32]byte{{1}, {3}})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("proof accepted for different inputs")
	}
}

func TestDLEQRejectsUnknownAndMalformed(t *testing.T) {
	ctx := context.Background()
	d := NewDLEQ()
	if ok, err := d.Verify(ctx, [32]byte{5}, nil); err != nil || ok {
		t.Fatalf("unknown hash accepted: ok=%v err=%v", ok, err)
	}
	h := d.Publish([]byte("not a proof"))
	if ok, err := d.Verify(ctx, h, nil); err != nil || ok {
		t.Fatalf("malformed proof accepted: ok=%v err=%v", ok, err)
	}
}

func TestDLEQHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDLEQ().Verify(ctx, [32]byte{1}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFuncAdapter(t *testing.T) {
	var called bool
	v := Func(func(ctx context.Context, h [32]byte, in [][32]byte) (bool, error) {
		called = true
		return len(in) == 1, nil
	})
	ok, err := v.Verify(context.Background(), [32]byte{}, [][32]byte{{1}})
	if err != nil || !ok || !called {
		t.Fatalf("adapter did not forward: ok=%v err=%v called=%v", ok, err, called)
	}
}
