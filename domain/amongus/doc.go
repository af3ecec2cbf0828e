// Package amongus implements the rules of a proof-gated social deduction
// game whose state lives in a shared key/value store.
//
// # Core Components
//
// StateMachine: owns the GameState (phase, round, winner) and GameConfig
// slots and performs every phase transition.
//
// RosterManager: owns the player map. Players join in the lobby, move while
// playing and are never removed, only marked dead.
//
// NullifierGuard: a single set of one-time tokens shared by votes, tasks,
// kills and impostor-win claims. A token is consumed only after its proof
// has been accepted.
//
// ProofGate: resolves the configured verifier and checks a proof hash
// against the statement's public inputs.
//
// MeetingEngine, ActionEngine and Lifecycle: the meeting/voting protocol,
// the proof-gated gameplay actions and the admin controls, built on the
// components above.
//
// # Transactions
//
// Contract is the public surface. Every call runs as one transaction over a
// storage.Batch: either all writes reach the store, or none do. Events are
// published and a ledger block is appended only after the commit.
//
// # Game Flow
//
// Lobby → Playing → Meeting → Playing → ... → Ended. Ended is terminal and
// every mutating action, except reconfiguration, fails once it is reached.
package amongus
