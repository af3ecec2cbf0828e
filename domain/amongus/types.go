package amongus

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
)

// Hash is a 32-byte commitment. The zero value is the "no vote" sentinel.
type Hash [32]byte

func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode hash: %w", err)
	}
	if len(raw) != len(h) {
		return fmt.Errorf("decode hash: got %d bytes, want %d", len(raw), len(h))
	}
	copy(h[:], raw)
	return nil
}

// Phase is the coarse mode of the game.
type Phase uint8

const (
	PhaseLobby Phase = iota
	PhasePlaying
	PhaseMeeting
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhasePlaying:
		return "playing"
	case PhaseMeeting:
		return "meeting"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

func (p Phase) Valid() bool { return p <= PhaseEnded }

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase maps a phase label to its value.
func ParsePhase(s string) (Phase, error) {
	for p := PhaseLobby; p <= PhaseEnded; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, ErrInvalidPhase.withMessage(fmt.Sprintf("unknown phase %q", s))
}

// Winner is the outcome of a game.
type Winner uint8

const (
	WinnerNone Winner = iota
	WinnerCrew
	WinnerImpostor
)

func (w Winner) String() string {
	switch w {
	case WinnerNone:
		return "none"
	case WinnerCrew:
		return "crew"
	case WinnerImpostor:
		return "impostor"
	default:
		return fmt.Sprintf("winner(%d)", uint8(w))
	}
}

func (w Winner) MarshalText() ([]byte, error) {
	if w > WinnerImpostor {
		return nil, fmt.Errorf("invalid winner %d", uint8(w))
	}
	return []byte(w.String()), nil
}

func (w *Winner) UnmarshalText(text []byte) error {
	parsed, err := ParseWinner(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ParseWinner maps a winner label to its value. "impost" is accepted as the
// short form of "impostor".
func ParseWinner(s string) (Winner, error) {
	switch s {
	case "none":
		return WinnerNone, nil
	case "crew":
		return WinnerCrew, nil
	case "impostor", "impost":
		return WinnerImpostor, nil
	}
	return 0, ErrInvalidWinner.withMessage(fmt.Sprintf("invalid winner symbol %q", s))
}

// GameConfig is set by the admin and read on join and on task completion.
type GameConfig struct {
	MaxPlayers uint32 `json:"max_players"`
	TasksToWin uint32 `json:"tasks_to_win"`
}

// DefaultConfig is used until the admin configures the game.
func DefaultConfig() GameConfig {
	return GameConfig{MaxPlayers: 15, TasksToWin: 40}
}

// MinPlayers is the smallest roster a game can start with.
const MinPlayers = 4

func (c GameConfig) validate() error {
	if c.MaxPlayers < MinPlayers {
		return ErrInvalidMaxPlayers
	}
	if c.TasksToWin == 0 {
		return ErrInvalidTasksToWin
	}
	return nil
}

type GameState struct {
	Phase          Phase  `json:"phase"`
	Round          uint32 `json:"round"`
	MeetingActive  bool   `json:"meeting_active"`
	ImpostorCount  uint32 `json:"impostor_count"`
	SabotageActive bool   `json:"sabotage_active"` // reserved, never read
	Winner         Winner `json:"winner"`
}

// DefaultState is reported before init.
func DefaultState() GameState {
	return GameState{Phase: PhaseLobby, ImpostorCount: 1, Winner: WinnerNone}
}

type Player struct {
	X            uint32 `json:"x"`
	Y            uint32 `json:"y"`
	Alive        bool   `json:"alive"`
	TasksDone    uint32 `json:"tasks_done"`
	PlayerHash   Hash   `json:"player_hash"`
	RoleHash     Hash   `json:"role_hash"`
	VotedForHash Hash   `json:"voted_for_hash"`
	Color        string `json:"color"`
	Name         string `json:"name"`
}

// HasVoted reports whether the player cast a vote in the current meeting.
func (p Player) HasVoted() bool { return !p.VotedForHash.IsZero() }

// Roster maps caller identities to players.
type Roster map[auth.Address]Player

// Addresses returns the roster keys in ascending order. Every scan that can
// stop early walks the roster in this order.
func (r Roster) Addresses() []auth.Address {
	out := make([]auth.Address, 0, len(r))
	for addr := range r {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r Roster) CountAlive() uint32 {
	var alive uint32
	for _, p := range r {
		if p.Alive {
			alive++
		}
	}
	return alive
}

func (r Roster) TotalTasks() uint64 {
	var total uint64
	for _, p := range r {
		total += uint64(p.TasksDone)
	}
	return total
}

// HasHash reports whether any entry, alive or dead, uses h.
func (r Roster) HasHash(h Hash) bool {
	for _, p := range r {
		if p.PlayerHash == h {
			return true
		}
	}
	return false
}

// Tally counts the alive players and, among them, those who voted for target.
func (r Roster) Tally(target Hash) (votes, alive uint32) {
	for _, p := range r {
		if !p.Alive {
			continue
		}
		alive++
		if p.VotedForHash == target {
			votes++
		}
	}
	return votes, alive
}

// VoteInput is a ballot with its proof.
type VoteInput struct {
	TargetHash Hash `json:"target_hash"`
	ProofHash  Hash `json:"proof_hash"`
	Nullifier  Hash `json:"nullifier"`
}

// Statement returns the public inputs a vote proof is checked against.
func (v VoteInput) Statement() []Hash {
	return []Hash{v.Nullifier}
}

// ProofInput accompanies task, kill and impostor-win submissions.
type ProofInput struct {
	ProofHash    Hash   `json:"proof_hash"`
	Nullifier    Hash   `json:"nullifier"`
	PublicInputs []Hash `json:"public_inputs"`
}

// Statement returns the declared public inputs with the nullifier appended.
func (p ProofInput) Statement() []Hash {
	out := make([]Hash, 0, len(p.PublicInputs)+1)
	out = append(out, p.PublicInputs...)
	return append(out, p.Nullifier)
}
