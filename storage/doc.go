// Package storage defines the key/value persistence boundary the game
// contract runs on.
//
// # Keys
//
// The contract addresses a small closed set of key kinds: Admin, Verifier,
// Config, GameState, Players, UsedNullifier(token), UsedInvocation(id) and
// Block(index). Key is a value type; its String form is the canonical storage
// name used by every backend.
//
// # Transactions
//
// A Batch stages writes on top of a Store. Reads through the batch observe
// the staged values, and nothing reaches the backing store until Commit.
// Backends implementing Applier receive the whole write set at once, so a
// commit is all-or-nothing.
package storage
