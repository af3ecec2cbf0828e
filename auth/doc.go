// Package auth identifies contract callers and checks that every mutating
// invocation is authorized by the address it names.
//
// An Address is the hex encoding of an ed25519 public key. A Signer builds
// signed Invocations and attaches them to a context.Context; a
// SignatureAuthorizer later checks that the invocation found in the context
// was signed by the caller the contract was asked to act for, for the same
// method and the same encoded arguments. Invocation IDs are unique, so a
// store that records consumed IDs rejects replays.
package auth
