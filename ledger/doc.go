// Package ledger implements an append-only journal of committed contract
// transactions.
//
// # Core Components
//
// Blockchain: An append-only log of committed transactions with
// cryptographic hash chaining for tamper detection.
//
// Block: A single committed transaction with its write-set digest and a
// link to the previous block.
//
// # Usage
//
// The contract appends one block after every successful commit. Verify can
// be called at any time to check that the chain is intact.
package ledger
