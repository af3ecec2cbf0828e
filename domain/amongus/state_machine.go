package amongus

import (
	"context"
	"fmt"

	"github.com/dev-tnsq/Proof-of-Sus/storage"
)

// StateMachine owns the GameState and GameConfig slots. It holds no state of
// its own; every call reads and writes through the store.
type StateMachine struct {
	store storage.Store
}

func NewStateMachine(store storage.Store) *StateMachine {
	return &StateMachine{store: store}
}

// Initialized reports whether init has run.
func (m *StateMachine) Initialized(ctx context.Context) (bool, error) {
	ok, err := m.store.Has(ctx, storage.GameStateKey)
	if err != nil {
		return false, ErrStorage.wrap(err)
	}
	return ok, nil
}

// State returns the stored state, or DefaultState before init.
func (m *StateMachine) State(ctx context.Context) (GameState, error) {
	st := DefaultState()
	if _, err := load(ctx, m.store, storage.GameStateKey, &st); err != nil {
		return GameState{}, err
	}
	return st, nil
}

func (m *StateMachine) save(ctx context.Context, st GameState) error {
	return save(ctx, m.store, storage.GameStateKey, st)
}

// Config returns the stored config, or DefaultConfig when none is set.
func (m *StateMachine) Config(ctx context.Context) (GameConfig, error) {
	cfg := DefaultConfig()
	if _, err := load(ctx, m.store, storage.ConfigKey, &cfg); err != nil {
		return GameConfig{}, err
	}
	return cfg, nil
}

// SaveConfig validates and stores cfg.
func (m *StateMachine) SaveConfig(ctx context.Context, cfg GameConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	return save(ctx, m.store, storage.ConfigKey, cfg)
}

// Reset writes the initial lobby state.
func (m *StateMachine) Reset(ctx context.Context, impostorCount uint32) (GameState, error) {
	st := DefaultState()
	st.ImpostorCount = impostorCount
	return st, m.save(ctx, st)
}

// Active returns the current state of an initialized game that has not
// ended. It is the guard in front of every gameplay action.
func (m *StateMachine) Active(ctx context.Context) (GameState, error) {
	ok, err := m.Initialized(ctx)
	if err != nil {
		return GameState{}, err
	}
	if !ok {
		return GameState{}, ErrNotInitialized
	}
	st, err := m.State(ctx)
	if err != nil {
		return GameState{}, err
	}
	if st.Phase == PhaseEnded {
		return GameState{}, ErrGameEnded
	}
	return st, nil
}

// Require returns the active state when it is in phase want. refusal
// describes the action for the wrong-phase error.
func (m *StateMachine) Require(ctx context.Context, want Phase, refusal string) (GameState, error) {
	st, err := m.Active(ctx)
	if err != nil {
		return GameState{}, err
	}
	if st.Phase != want {
		return GameState{}, ErrWrongPhase.withMessage(fmt.Sprintf("%s (phase is %s)", refusal, st.Phase))
	}
	return st, nil
}

// Start moves Lobby to Playing for a roster of rosterSize players.
func (m *StateMachine) Start(ctx context.Context, rosterSize int) (GameState, error) {
	st, err := m.Active(ctx)
	if err != nil {
		return GameState{}, err
	}
	if st.Phase != PhaseLobby {
		return GameState{}, ErrGameAlreadyStarted
	}
	if rosterSize < MinPlayers {
		return GameState{}, ErrNotEnoughPlayers
	}
	st.Phase = PhasePlaying
	st.Round = 1
	st.MeetingActive = false
	st.Winner = WinnerNone
	return st, m.save(ctx, st)
}

// EnterMeeting moves Playing to Meeting and opens a new round.
func (m *StateMachine) EnterMeeting(ctx context.Context) (GameState, error) {
	st, err := m.Require(ctx, PhasePlaying, "meeting can only be started while playing")
	if err != nil {
		return GameState{}, err
	}
	st.Phase = PhaseMeeting
	st.MeetingActive = true
	st.Round++
	return st, m.save(ctx, st)
}

// InMeeting returns the state when a meeting is open.
func (m *StateMachine) InMeeting(ctx context.Context) (GameState, error) {
	st, err := m.Active(ctx)
	if err != nil {
		return GameState{}, err
	}
	if st.Phase != PhaseMeeting || !st.MeetingActive {
		return GameState{}, ErrMeetingNotActive
	}
	return st, nil
}

// Resume closes the meeting and returns to Playing.
func (m *StateMachine) Resume(ctx context.Context) (GameState, error) {
	st, err := m.InMeeting(ctx)
	if err != nil {
		return GameState{}, err
	}
	st.Phase = PhasePlaying
	st.MeetingActive = false
	return st, m.save(ctx, st)
}

// SetWinner ends the game. It is the only way into PhaseEnded.
func (m *StateMachine) SetWinner(ctx context.Context, w Winner) (GameState, error) {
	if w != WinnerCrew && w != WinnerImpostor {
		return GameState{}, ErrInvalidWinner
	}
	st, err := m.Active(ctx)
	if err != nil {
		return GameState{}, err
	}
	st.Winner = w
	st.Phase = PhaseEnded
	st.MeetingActive = false
	return st, m.save(ctx, st)
}

// Override forces the phase without running the transition rules. Ended
// cannot be forced; it needs a winner.
func (m *StateMachine) Override(ctx context.Context, p Phase) (GameState, error) {
	if !p.Valid() || p == PhaseEnded {
		return GameState{}, ErrInvalidPhase.withMessage(fmt.Sprintf("cannot set phase to %s", p))
	}
	st, err := m.Active(ctx)
	if err != nil {
		return GameState{}, err
	}
	st.Phase = p
	st.MeetingActive = p == PhaseMeeting
	return st, m.save(ctx, st)
}
