package amongus

import (
	"context"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
	"github.com/dev-tnsq/Proof-of-Sus/storage"
)

// RosterManager owns the player map.
type RosterManager struct {
	store storage.Store
}

func NewRosterManager(store storage.Store) *RosterManager {
	return &RosterManager{store: store}
}

// Load returns the roster, empty when none is stored.
func (r *RosterManager) Load(ctx context.Context) (Roster, error) {
	roster := Roster{}
	if _, err := load(ctx, r.store, storage.PlayersKey, &roster); err != nil {
		return nil, err
	}
	return roster, nil
}

func (r *RosterManager) Save(ctx context.Context, roster Roster) error {
	if roster == nil {
		roster = Roster{}
	}
	return save(ctx, r.store, storage.PlayersKey, roster)
}

// Living returns the roster and the entry for addr, which must exist and
// be alive. deadMsg describes the refused action.
func (r *RosterManager) Living(ctx context.Context, addr auth.Address, deadMsg string) (Roster, Player, error) {
	roster, err := r.Load(ctx)
	if err != nil {
		return nil, Player{}, err
	}
	p, ok := roster[addr]
	if !ok {
		return nil, Player{}, ErrPlayerNotFound
	}
	if !p.Alive {
		return nil, Player{}, ErrPlayerDead.withMessage(deadMsg)
	}
	return roster, p, nil
}

// JoinRequest carries a new player's labels and commitments.
type JoinRequest struct {
	Color      string `json:"color"`
	Name       string `json:"name"`
	PlayerHash Hash   `json:"player_hash"`
	RoleHash   Hash   `json:"role_hash"`
}

// Join adds addr to the roster. The caller checks the phase.
func (r *RosterManager) Join(ctx context.Context, cfg GameConfig, addr auth.Address, req JoinRequest) (Player, error) {
	roster, err := r.Load(ctx)
	if err != nil {
		return Player{}, err
	}
	if uint64(len(roster)) >= uint64(cfg.MaxPlayers) {
		return Player{}, ErrLobbyFull
	}
	if _, ok := roster[addr]; ok {
		return Player{}, ErrAlreadyJoined
	}
	if roster.HasHash(req.PlayerHash) {
		return Player{}, ErrDuplicatePlayerHash
	}

	p := Player{
		Alive:      true,
		PlayerHash: req.PlayerHash,
		RoleHash:   req.RoleHash,
		Color:      req.Color,
		Name:       req.Name,
	}
	roster[addr] = p
	return p, r.Save(ctx, roster)
}

// Move overwrites the position of a living player. Coordinates are not
// bounded.
func (r *RosterManager) Move(ctx context.Context, addr auth.Address, x, y uint32) (Player, error) {
	roster, p, err := r.Living(ctx, addr, "dead player cannot move")
	if err != nil {
		return Player{}, err
	}
	p.X, p.Y = x, y
	roster[addr] = p
	return p, r.Save(ctx, roster)
}

// ClearVotes resets the ballot of every living player. Dead players keep
// theirs; they are never tallied.
func (r *RosterManager) ClearVotes(ctx context.Context) error {
	roster, err := r.Load(ctx)
	if err != nil {
		return err
	}
	for addr, p := range roster {
		if p.Alive {
			p.VotedForHash = Hash{}
			roster[addr] = p
		}
	}
	return r.Save(ctx, roster)
}
