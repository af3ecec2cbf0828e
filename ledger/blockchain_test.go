package ledger

import (
	"testing"
	"time"
)

func sampleTx(method string) Transaction {
	return Transaction{
		ID:     "tx-" + method,
		Method: method,
		Caller: "alice",
		Writes: []string{"game_state", "players"},
		Digest: "abc",
	}
}

// TestNewBlockchain verifies the shape of the genesis block.
func TestNewBlockchain(t *testing.T) {
	bc := NewBlockchain()
	if bc.Len() != 1 {
		t.Fatalf("expected 1 block (genesis), got %d", bc.Len())
	}
	genesis := bc.Latest()
	if genesis.Index != 0 {
		t.Fatalf("genesis index should be 0, got %d", genesis.Index)
	}
	if genesis.PrevHash != "0" {
		t.Fatalf("genesis PrevHash should be '0', got %s", genesis.PrevHash)
	}
	if genesis.Tx.Method != "genesis" {
		t.Fatalf("genesis method should be 'genesis', got %s", genesis.Tx.Method)
	}
	if genesis.Hash == "" {
		t.Fatal("genesis block should have a hash")
	}
	if other := NewBlockchain().Latest(); other.Hash != genesis.Hash {
		t.Fatal("every chain should start from the same genesis block")
	}
}

// TestAppendValidBlock verifies that a new block links to its predecessor.
func TestAppendValidBlock(t *testing.T) {
	bc := NewBlockchain()
	genesis := bc.Latest()

	b, err := bc.Append(sampleTx("join_game"))
	if err != nil {
		t.Fatalf("unexpected error appending valid block: %v", err)
	}
	if bc.Len() != 2 {
		t.Fatalf("expected 2 blocks after append, got %d", bc.Len())
	}
	if b.Index != 1 {
		t.Fatalf("new block index should be 1, got %d", b.Index)
	}
	if b.PrevHash != genesis.Hash {
		t.Fatal("new block's PrevHash should match previous block's hash")
	}
	if b.Tx.Method != "join_game" || len(b.Tx.Writes) != 2 {
		t.Fatalf("unexpected transaction %+v", b.Tx)
	}
	if err := bc.Verify(); err != nil {
		t.Fatalf("chain should verify: %v", err)
	}
}

func TestAppendRequiresMethod(t *testing.T) {
	bc := NewBlockchain()
	if _, err := bc.Append(Transaction{}); err == nil {
		t.Fatal("expected error for transaction without method")
	}
	if bc.Len() != 1 {
		t.Fatalf("blockchain should still have 1 block, got %d", bc.Len())
	}
}

// TestAppendCopiesWrites verifies the stored block does not alias the
// caller's slice.
func TestAppendCopiesWrites(t *testing.T) {
	bc := NewBlockchain()
	tx := sampleTx("submit_move")
	if _, err := bc.Append(tx); err != nil {
		t.Fatal(err)
	}
	tx.Writes[0] = "tampered"
	if err := bc.Verify(); err != nil {
		t.Fatalf("mutating the input slice broke the chain: %v", err)
	}
}

func TestByIndex(t *testing.T) {
	bc := NewBlockchain()
	_, _ = bc.Append(sampleTx("init"))
	b, err := bc.ByIndex(1)
	if err != nil {
		t.Fatalf("by index: %v", err)
	}
	if b.Tx.Method != "init" {
		t.Fatalf("expected init, got %s", b.Tx.Method)
	}
	if _, err := bc.ByIndex(5); err == nil {
		t.Fatal("expected out of range error")
	}
	if _, err := bc.ByIndex(-1); err == nil {
		t.Fatal("expected out of range error")
	}
}

// TestVerifyDetectsTampering verifies that editing a stored block breaks the
// chain.
func TestVerifyDetectsTampering(t *testing.T) {
	bc := NewBlockchain()
	_, _ = bc.Append(sampleTx("init"))
	_, _ = bc.Append(sampleTx("start_game"))

	bc.blocks[1].Tx.Caller = "mallory"
	if err := bc.Verify(); err == nil {
		t.Fatal("expected verification failure after tampering")
	}
}

func TestVerifyDetectsBrokenLink(t *testing.T) {
	bc := NewBlockchain()
	_, _ = bc.Append(sampleTx("init"))
	_, _ = bc.Append(sampleTx("start_game"))

	bc.blocks[2].PrevHash = "deadbeef"
	if err := bc.Verify(); err == nil {
		t.Fatal("expected verification failure for broken link")
	}
}

func TestTimestampsUseClock(t *testing.T) {
	bc := NewBlockchain()
	fixed := time.Unix(1700000000, 0)
	bc.now = func() time.Time { return fixed }
	b, err := bc.Append(sampleTx("init"))
	if err != nil {
		t.Fatal(err)
	}
	if b.Timestamp != fixed.Unix() {
		t.Fatalf("expected timestamp %d, got %d", fixed.Unix(), b.Timestamp)
	}
}

func TestBlocksSnapshot(t *testing.T) {
	bc := NewBlockchain()
	_, _ = bc.Append(sampleTx("init"))
	snap := bc.Blocks()
	snap[0].Hash = "x"
	if err := bc.Verify(); err != nil {
		t.Fatalf("snapshot mutation leaked into chain: %v", err)
	}
}

// TestNextAndAdd verifies that a block built on one chain can be replayed
// onto another chain with the same history.
func TestNextAndAdd(t *testing.T) {
	src := NewBlockchain()
	b, err := src.Next(sampleTx("init"))
	if err != nil {
		t.Fatal(err)
	}
	if src.Len() != 1 {
		t.Fatal("Next must not append")
	}
	if err := src.Add(b); err != nil {
		t.Fatalf("add to source: %v", err)
	}

	dst := NewBlockchain()
	if err := dst.Add(b); err != nil {
		t.Fatalf("replay onto fresh chain: %v", err)
	}
	if err := dst.Verify(); err != nil {
		t.Fatalf("replayed chain should verify: %v", err)
	}
	if err := dst.Add(b); err == nil {
		t.Fatal("adding the same block twice should fail")
	}

	forged := b
	forged.Tx.Caller = "mallory"
	if err := NewBlockchain().Add(forged); err == nil {
		t.Fatal("expected hash mismatch for altered block")
	}
	if _, err := src.Next(Transaction{}); err == nil {
		t.Fatal("expected error for transaction without method")
	}
}
