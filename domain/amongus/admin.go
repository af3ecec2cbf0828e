package amongus

import (
	"context"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
	"github.com/dev-tnsq/Proof-of-Sus/storage"
)

// Lifecycle holds the admin controls: init, configuration, verifier
// registration, phase override, start and forced end.
type Lifecycle struct {
	store  storage.Store
	state  *StateMachine
	roster *RosterManager
	proofs *ProofGate
	events *EventLog
}

// Admin returns the stored admin address.
func (l *Lifecycle) Admin(ctx context.Context) (auth.Address, error) {
	raw, ok, err := l.store.Get(ctx, storage.AdminKey)
	if err != nil {
		return "", ErrStorage.wrap(err)
	}
	if !ok {
		return "", ErrNotInitialized.withMessage("admin not set")
	}
	return auth.Address(raw), nil
}

// IsAdmin fails with ErrNotAdmin unless caller is the stored admin.
func (l *Lifecycle) IsAdmin(ctx context.Context, caller auth.Address) error {
	admin, err := l.Admin(ctx)
	if err != nil {
		return err
	}
	if admin != caller {
		return ErrNotAdmin
	}
	return nil
}

// Init writes the admin, the default config, an empty roster and the
// lobby state.
func (l *Lifecycle) Init(ctx context.Context, admin auth.Address, impostorCount uint32) error {
	if _, err := l.state.Reset(ctx, impostorCount); err != nil {
		return err
	}
	if err := l.state.SaveConfig(ctx, DefaultConfig()); err != nil {
		return err
	}
	if err := l.store.Set(ctx, storage.AdminKey, []byte(admin)); err != nil {
		return ErrStorage.wrap(err)
	}
	return l.roster.Save(ctx, Roster{})
}

func (l *Lifecycle) Configure(ctx context.Context, maxPlayers, tasksToWin uint32) error {
	return l.state.SaveConfig(ctx, GameConfig{MaxPlayers: maxPlayers, TasksToWin: tasksToWin})
}

func (l *Lifecycle) SetVerifier(ctx context.Context, addr auth.Address) error {
	return l.proofs.SetVerifierAddress(ctx, addr)
}

func (l *Lifecycle) SetPhase(ctx context.Context, p Phase) (GameState, error) {
	return l.state.Override(ctx, p)
}

// Start begins the first round once enough players joined.
func (l *Lifecycle) Start(ctx context.Context, caller auth.Address) (GameState, error) {
	roster, err := l.roster.Load(ctx)
	if err != nil {
		return GameState{}, err
	}
	st, err := l.state.Start(ctx, len(roster))
	if err != nil {
		return GameState{}, err
	}
	l.events.emit(Event{Topic: TopicStarted, Caller: caller, Round: st.Round})
	return st, nil
}

// End declares w the winner.
func (l *Lifecycle) End(ctx context.Context, caller auth.Address, w Winner) error {
	if _, err := l.state.Active(ctx); err != nil {
		return err
	}
	if _, err := l.state.SetWinner(ctx, w); err != nil {
		return err
	}
	l.events.emit(Event{Topic: TopicWinner, Caller: caller, Winner: w})
	return nil
}
