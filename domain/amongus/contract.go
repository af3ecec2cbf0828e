package amongus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
	"github.com/dev-tnsq/Proof-of-Sus/ledger"
	"github.com/dev-tnsq/Proof-of-Sus/storage"
	"github.com/dev-tnsq/Proof-of-Sus/verifier"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dev-tnsq/Proof-of-Sus/domain/amongus"

// Contract is the public surface of the game. Calls are serialized; each
// mutating call either commits all of its writes or none of them.
type Contract struct {
	mu        sync.RWMutex
	store     storage.Store
	resolver  verifier.Resolver
	authz     auth.Authorizer
	publisher Publisher
	journal   *ledger.Blockchain
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Contract.
type Option func(*Contract)

func WithLogger(l *slog.Logger) Option {
	return func(c *Contract) { c.logger = l }
}

func WithPublisher(p Publisher) Option {
	return func(c *Contract) { c.publisher = p }
}

// WithAuthorizer replaces the default signature check.
func WithAuthorizer(a auth.Authorizer) Option {
	return func(c *Contract) { c.authz = a }
}

// WithLedger appends committed transactions to bc instead of a fresh chain.
func WithLedger(bc *ledger.Blockchain) Option {
	return func(c *Contract) { c.journal = bc }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Contract) { c.tracer = tp.Tracer(tracerName) }
}

// New creates a contract over store. resolver maps the stored verifier
// address to a Verifier.
func New(store storage.Store, resolver verifier.Resolver, opts ...Option) *Contract {
	c := &Contract{
		store:     store,
		resolver:  resolver,
		authz:     auth.NewSignatureAuthorizer(),
		publisher: discard{},
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.journal == nil {
		c.journal = ledger.NewBlockchain()
	}
	return c
}

// Ledger returns the journal of committed transactions. Blocks committed by
// an earlier process over the same store appear after LoadJournal or the
// next mutating call.
func (c *Contract) Ledger() *ledger.Blockchain { return c.journal }

// LoadJournal appends the blocks persisted in the store that the in-memory
// journal does not hold yet.
func (c *Contract) LoadJournal(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncJournal(ctx)
}

func (c *Contract) syncJournal(ctx context.Context) error {
	for {
		var block ledger.Block
		ok, err := load(ctx, c.store, storage.BlockKey(uint64(c.journal.Len())), &block)
		if err != nil || !ok {
			return err
		}
		if err := c.journal.Add(block); err != nil {
			return ErrStorage.wrap(fmt.Errorf("load block %d: %w", block.Index, err))
		}
	}
}

// txn is the working set of one call. Every component reads and writes
// through the same batch.
type txn struct {
	method     string
	payload    []byte
	store      storage.Store
	authz      auth.Authorizer
	events     *EventLog
	state      *StateMachine
	roster     *RosterManager
	nullifiers *NullifierGuard
	proofs     *ProofGate
	meeting    *MeetingEngine
	actions    *ActionEngine
	admin      *Lifecycle
}

func (c *Contract) newTxn(store storage.Store, method string, payload []byte) *txn {
	t := &txn{
		method:     method,
		payload:    payload,
		store:      store,
		authz:      c.authz,
		events:     &EventLog{},
		state:      NewStateMachine(store),
		roster:     NewRosterManager(store),
		nullifiers: NewNullifierGuard(store),
		proofs:     NewProofGate(store, c.resolver),
	}
	t.meeting = &MeetingEngine{state: t.state, roster: t.roster, nullifiers: t.nullifiers, proofs: t.proofs, events: t.events}
	t.actions = &ActionEngine{state: t.state, roster: t.roster, nullifiers: t.nullifiers, proofs: t.proofs, events: t.events}
	t.admin = &Lifecycle{store: store, state: t.state, roster: t.roster, proofs: t.proofs, events: t.events}
	return t
}

// requireAuth checks caller's authorization for the call's method and
// arguments. A signed invocation is consumed in the same batch as the
// call's writes, so its ID stays spent only if the call commits.
func (t *txn) requireAuth(ctx context.Context, caller auth.Address) error {
	if err := t.authz.RequireAuth(ctx, caller, t.method, t.payload); err != nil {
		return ErrUnauthenticated.wrap(err)
	}
	inv, ok := auth.InvocationFrom(ctx)
	if !ok || inv.ID == "" {
		return nil
	}
	key := storage.UsedInvocation(inv.ID)
	used, err := t.store.Has(ctx, key)
	if err != nil {
		return ErrStorage.wrap(fmt.Errorf("has %s: %w", key, err))
	}
	if used {
		return ErrUnauthenticated.wrap(fmt.Errorf("%w: %s", auth.ErrReplayedRequest, inv.ID))
	}
	if err := t.store.Set(ctx, key, []byte{1}); err != nil {
		return ErrStorage.wrap(fmt.Errorf("set %s: %w", key, err))
	}
	return nil
}

func (t *txn) requireAdmin(ctx context.Context, caller auth.Address) error {
	if err := t.requireAuth(ctx, caller); err != nil {
		return err
	}
	return t.admin.IsAdmin(ctx, caller)
}

// transact runs fn over a fresh batch and commits it when fn succeeds. args
// are the call's arguments as a signed invocation must carry them.
// Events are published only after the commit and outside the lock.
func (c *Contract) transact(ctx context.Context, method string, caller auth.Address, args any, fn func(context.Context, *txn) error) error {
	ctx, span := c.tracer.Start(ctx, "amongus."+method, trace.WithAttributes(
		attribute.String("amongus.method", method),
		attribute.String("amongus.caller", string(caller)),
	))
	defer span.End()

	payload, err := EncodeArgs(args)
	if err != nil {
		err = ErrUnauthenticated.wrap(err)
		c.abort(span, method, caller, err)
		return err
	}
	events, err := c.commit(ctx, span, method, caller, payload, fn)
	if err != nil {
		return err
	}
	for _, ev := range events {
		c.publisher.Publish(ctx, ev)
	}
	return nil
}

func (c *Contract) commit(ctx context.Context, span trace.Span, method string, caller auth.Address, payload []byte, fn func(context.Context, *txn) error) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.syncJournal(ctx); err != nil {
		c.abort(span, method, caller, err)
		return nil, err
	}

	batch := storage.NewBatch(c.store)
	tx := c.newTxn(batch, method, payload)
	if err := fn(ctx, tx); err != nil {
		return nil, c.fail(span, method, caller, batch, err)
	}

	writes := batch.Writes()
	names := make([]string, len(writes))
	for i, w := range writes {
		names[i] = w.Key.String()
	}
	block, err := c.journal.Next(ledger.Transaction{
		ID:     invocationID(ctx),
		Method: method,
		Caller: string(caller),
		Writes: names,
		Digest: storage.Digest(writes),
	})
	if err != nil {
		return nil, c.fail(span, method, caller, batch, ErrStorage.wrap(err))
	}
	if err := save(ctx, batch, storage.BlockKey(uint64(block.Index)), block); err != nil {
		return nil, c.fail(span, method, caller, batch, err)
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, c.fail(span, method, caller, batch, ErrStorage.wrap(err))
	}

	if err := c.journal.Add(block); err != nil {
		c.logger.Error("ledger append failed", "method", method, "caller", caller.Short(), "error", err)
	} else {
		span.SetAttributes(attribute.Int("amongus.block", block.Index))
		c.logger.Debug("transaction committed", "method", method, "caller", caller.Short(), "block", block.Index, "writes", len(writes))
	}
	return tx.events.Events(), nil
}

func (c *Contract) fail(span trace.Span, method string, caller auth.Address, batch *storage.Batch, err error) error {
	batch.Discard()
	c.abort(span, method, caller, err)
	return err
}

func (c *Contract) abort(span trace.Span, method string, caller auth.Address, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Warn("transaction aborted", "method", method, "caller", caller.Short(), "error", err)
}

// invocationID reuses the signed invocation's ID when there is one.
func invocationID(ctx context.Context) string {
	if inv, ok := auth.InvocationFrom(ctx); ok && inv.ID != "" {
		return inv.ID
	}
	return uuid.NewString()
}

// Init sets admin, the default config, an empty roster and the lobby state.
// It can run once.
func (c *Contract) Init(ctx context.Context, admin auth.Address, impostorCount uint32) error {
	args := InitArgs{Admin: admin, ImpostorCount: impostorCount}
	return c.transact(ctx, "init", admin, args, func(ctx context.Context, tx *txn) error {
		ok, err := tx.state.Initialized(ctx)
		if err != nil {
			return err
		}
		if ok {
			return ErrAlreadyInitialized
		}
		if err := tx.requireAuth(ctx, admin); err != nil {
			return err
		}
		return tx.admin.Init(ctx, admin, impostorCount)
	})
}

func (c *Contract) ConfigureGame(ctx context.Context, caller auth.Address, maxPlayers, tasksToWin uint32) error {
	args := ConfigArgs{MaxPlayers: maxPlayers, TasksToWin: tasksToWin}
	return c.transact(ctx, "configure_game", caller, args, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAdmin(ctx, caller); err != nil {
			return err
		}
		return tx.admin.Configure(ctx, maxPlayers, tasksToWin)
	})
}

func (c *Contract) SetVerifier(ctx context.Context, caller, verifierAddr auth.Address) error {
	return c.transact(ctx, "set_verifier", caller, VerifierArgs{Verifier: verifierAddr}, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAdmin(ctx, caller); err != nil {
			return err
		}
		return tx.admin.SetVerifier(ctx, verifierAddr)
	})
}

// SetPhase forces the phase. Ended is refused; use EndGameAdmin.
func (c *Contract) SetPhase(ctx context.Context, caller auth.Address, phase Phase) error {
	return c.transact(ctx, "set_phase", caller, PhaseArgs{Phase: uint8(phase)}, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAdmin(ctx, caller); err != nil {
			return err
		}
		_, err := tx.admin.SetPhase(ctx, phase)
		return err
	})
}

func (c *Contract) StartGame(ctx context.Context, caller auth.Address) error {
	return c.transact(ctx, "start_game", caller, NoArgs{}, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAdmin(ctx, caller); err != nil {
			return err
		}
		_, err := tx.admin.Start(ctx, caller)
		return err
	})
}

// JoinGame adds player to the lobby.
func (c *Contract) JoinGame(ctx context.Context, player auth.Address, color, name string, playerHash, roleHash Hash) error {
	req := JoinRequest{
		Color:      color,
		Name:       name,
		PlayerHash: playerHash,
		RoleHash:   roleHash,
	}
	return c.transact(ctx, "join_game", player, req, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAuth(ctx, player); err != nil {
			return err
		}
		if _, err := tx.state.Require(ctx, PhaseLobby, "joining only allowed in lobby"); err != nil {
			return err
		}
		cfg, err := tx.state.Config(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.roster.Join(ctx, cfg, player, req); err != nil {
			return err
		}
		tx.events.emit(Event{Topic: TopicJoined, Caller: player})
		return nil
	})
}

func (c *Contract) SubmitMove(ctx context.Context, player auth.Address, x, y uint32) error {
	return c.transact(ctx, "submit_move", player, MoveArgs{X: x, Y: y}, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAuth(ctx, player); err != nil {
			return err
		}
		return tx.actions.Move(ctx, player, x, y)
	})
}

func (c *Contract) StartMeeting(ctx context.Context, caller auth.Address) error {
	return c.transact(ctx, "start_meeting", caller, NoArgs{}, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAuth(ctx, caller); err != nil {
			return err
		}
		_, err := tx.meeting.Start(ctx, caller)
		return err
	})
}

// EndMeeting resumes play without a tally.
func (c *Contract) EndMeeting(ctx context.Context, caller auth.Address) error {
	return c.transact(ctx, "end_meeting", caller, NoArgs{}, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAdmin(ctx, caller); err != nil {
			return err
		}
		_, err := tx.meeting.End(ctx, caller)
		return err
	})
}

// FinalizeMeeting tallies the votes for target and resumes play. It reports
// whether target was ejected.
func (c *Contract) FinalizeMeeting(ctx context.Context, caller auth.Address, target Hash) (bool, error) {
	var ejected bool
	err := c.transact(ctx, "finalize_meeting", caller, TargetArgs{Target: target}, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAdmin(ctx, caller); err != nil {
			return err
		}
		var err error
		ejected, err = tx.meeting.Finalize(ctx, caller, target)
		return err
	})
	if err != nil {
		return false, err
	}
	return ejected, nil
}

func (c *Contract) SubmitVote(ctx context.Context, voter auth.Address, vote VoteInput) error {
	return c.transact(ctx, "submit_vote", voter, vote, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAuth(ctx, voter); err != nil {
			return err
		}
		return tx.meeting.Vote(ctx, voter, vote)
	})
}

func (c *Contract) SubmitTaskProof(ctx context.Context, player auth.Address, proof ProofInput) error {
	return c.transact(ctx, "submit_task_proof", player, proof, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAuth(ctx, player); err != nil {
			return err
		}
		return tx.actions.Task(ctx, player, proof)
	})
}

func (c *Contract) SubmitKillProof(ctx context.Context, killer, victim auth.Address, proof ProofInput) error {
	args := KillArgs{Victim: victim, Proof: proof}
	return c.transact(ctx, "submit_kill_proof", killer, args, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAuth(ctx, killer); err != nil {
			return err
		}
		return tx.actions.Kill(ctx, killer, victim, proof)
	})
}

func (c *Contract) SubmitImpostorWinProof(ctx context.Context, caller auth.Address, proof ProofInput) error {
	return c.transact(ctx, "submit_impostor_win_proof", caller, proof, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAuth(ctx, caller); err != nil {
			return err
		}
		return tx.actions.ImpostorWin(ctx, caller, proof)
	})
}

// EndGameAdmin ends the game with an explicit winner.
func (c *Contract) EndGameAdmin(ctx context.Context, caller auth.Address, winner Winner) error {
	return c.transact(ctx, "end_game_admin", caller, WinnerArgs{Winner: uint8(winner)}, func(ctx context.Context, tx *txn) error {
		if err := tx.requireAdmin(ctx, caller); err != nil {
			return err
		}
		return tx.admin.End(ctx, caller, winner)
	})
}

// GetPlayers returns the roster.
func (c *Contract) GetPlayers(ctx context.Context) (Roster, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NewRosterManager(c.store).Load(ctx)
}

// GetConfig returns the game configuration.
func (c *Contract) GetConfig(ctx context.Context) (GameConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NewStateMachine(c.store).Config(ctx)
}

// GetGameState returns the game state.
func (c *Contract) GetGameState(ctx context.Context) (GameState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NewStateMachine(c.store).State(ctx)
}

// VerifyZKProof asks the configured verifier about a proof without
// touching any state.
func (c *Contract) VerifyZKProof(ctx context.Context, proofHash Hash, publicInputs []Hash) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NewProofGate(c.store, c.resolver).Check(ctx, proofHash, publicInputs)
}
