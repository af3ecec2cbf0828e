package amongus

import "github.com/dev-tnsq/Proof-of-Sus/auth"

// The argument types below are what a signed invocation's payload commits
// to. A caller signs EncodeArgs of the same value the contract method is
// called with; JoinRequest, VoteInput and ProofInput double as the payloads
// of join_game, submit_vote, submit_task_proof and
// submit_impostor_win_proof.

type InitArgs struct {
	Admin         auth.Address `json:"admin"`
	ImpostorCount uint32       `json:"impostor_count"`
}

type ConfigArgs struct {
	MaxPlayers uint32 `json:"max_players"`
	TasksToWin uint32 `json:"tasks_to_win"`
}

type VerifierArgs struct {
	Verifier auth.Address `json:"verifier"`
}

// PhaseArgs and WinnerArgs carry the raw enum value so that an out of range
// value still reaches the contract and is rejected there.
type PhaseArgs struct {
	Phase uint8 `json:"phase"`
}

type WinnerArgs struct {
	Winner uint8 `json:"winner"`
}

type MoveArgs struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

type TargetArgs struct {
	Target Hash `json:"target"`
}

type KillArgs struct {
	Victim auth.Address `json:"victim"`
	Proof  ProofInput   `json:"proof"`
}

// NoArgs is the payload of methods that take nothing beyond the caller.
type NoArgs struct{}
