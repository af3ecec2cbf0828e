package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Transaction describes one committed contract invocation.
type Transaction struct {
	ID     string   `json:"id"`
	Method string   `json:"method"`
	Caller string   `json:"caller,omitempty"`
	Writes []string `json:"writes"` // storage key names touched
	Digest string   `json:"digest"` // hash of the write set
}

// Block is one entry of the journal.
type Block struct {
	Index     int         `json:"index"`
	Timestamp int64       `json:"timestamp"`
	PrevHash  string      `json:"prev_hash"`
	Hash      string      `json:"hash"`
	Tx        Transaction `json:"tx"`
}

type Blockchain struct {
	mu     sync.RWMutex
	blocks []Block
	now    func() time.Time
}

// NewBlockchain creates a new blockchain with an initialized genesis block.
// The genesis block has index 0, timestamp 0, previous hash "0" and a
// "genesis" transaction, so every chain starts from the same hash and a
// persisted chain can be replayed onto a fresh one with Add.
func NewBlockchain() *Blockchain {
	bc := &Blockchain{
		blocks: make([]Block, 0),
		now:    time.Now,
	}

	genesis := Block{
		Index:    0,
		PrevHash: "0",
		Tx:       Transaction{Method: "genesis"},
	}
	genesis.Hash = bc.calculateHash(genesis)
	bc.blocks = append(bc.blocks, genesis)

	return bc
}

// Append links tx after the latest block. It calculates the block hash,
// validates the block against the previous one and returns the stored copy.
func (bc *Blockchain) Append(tx Transaction) (Block, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	b, err := bc.next(tx)
	if err != nil {
		return Block{}, err
	}
	if err := bc.add(b); err != nil {
		return Block{}, err
	}
	return b, nil
}

// Next builds the block that Append would store for tx without storing it.
// Callers that persist blocks elsewhere write the result first and then
// hand it to Add.
func (bc *Blockchain) Next(tx Transaction) (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.next(tx)
}

// Add validates b against the latest block and appends it.
func (bc *Blockchain) Add(b Block) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.add(b)
}

func (bc *Blockchain) next(tx Transaction) (Block, error) {
	if tx.Method == "" {
		return Block{}, fmt.Errorf("transaction method is required")
	}
	latest := bc.blocks[len(bc.blocks)-1]

	b := Block{
		Index:     latest.Index + 1,
		Timestamp: bc.now().Unix(),
		PrevHash:  latest.Hash,
		Tx:        tx,
	}
	b.Tx.Writes = append([]string(nil), tx.Writes...)
	b.Hash = bc.calculateHash(b)
	return b, nil
}

func (bc *Blockchain) add(b Block) error {
	if err := bc.validateBlock(b, bc.blocks[len(bc.blocks)-1]); err != nil {
		return fmt.Errorf("invalid block: %w", err)
	}
	b.Tx.Writes = append([]string(nil), b.Tx.Writes...)
	bc.blocks = append(bc.blocks, b)
	return nil
}

// Latest returns the most recently added block.
func (bc *Blockchain) Latest() Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	return bc.blocks[len(bc.blocks)-1]
}

// ByIndex retrieves a block by its index in the chain. Returns an error if the
// index is out of range.
func (bc *Blockchain) ByIndex(index int) (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if index < 0 || index >= len(bc.blocks) {
		return Block{}, fmt.Errorf("index %d out of range", index)
	}
	return bc.blocks[index], nil
}

// Len returns the number of blocks, genesis included.
func (bc *Blockchain) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

// Blocks returns a snapshot of the chain.
func (bc *Blockchain) Blocks() []Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	out := make([]Block, len(bc.blocks))
	copy(out, bc.blocks)
	return out
}

// Verify validates the integrity of the entire chain by checking the genesis
// block and each subsequent block's hash, index continuity and previous hash
// linkage.
func (bc *Blockchain) Verify() error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if len(bc.blocks) == 0 {
		return fmt.Errorf("empty blockchain")
	}
	if bc.blocks[0].PrevHash != "0" || bc.blocks[0].Hash != bc.calculateHash(bc.blocks[0]) {
		return fmt.Errorf("invalid genesis block")
	}

	for i := 1; i < len(bc.blocks); i++ {
		if err := bc.validateBlock(bc.blocks[i], bc.blocks[i-1]); err != nil {
			return fmt.Errorf("block %d invalid: %w", i, err)
		}
	}
	return nil
}

// validateBlock verifies that a block is valid relative to the previous block.
func (bc *Blockchain) validateBlock(current, previous Block) error {
	if current.Index != previous.Index+1 {
		return fmt.Errorf("invalid index: expected %d, got %d", previous.Index+1, current.Index)
	}
	if current.PrevHash != previous.Hash {
		return fmt.Errorf("invalid prev hash: expected %s, got %s", previous.Hash, current.PrevHash)
	}
	expectedHash := bc.calculateHash(current)
	if current.Hash != expectedHash {
		return fmt.Errorf("invalid hash: expected %s, got %s", expectedHash, current.Hash)
	}
	return nil
}

// calculateHash computes the SHA256 hash of a block from its index,
// timestamp, previous hash and JSON-encoded transaction.
func (bc *Blockchain) calculateHash(block Block) string {
	txBytes, _ := json.Marshal(block.Tx)

	data := fmt.Sprintf("%d%d%s%s",
		block.Index,
		block.Timestamp,
		block.PrevHash,
		string(txBytes),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
