package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pterm/pterm"
	"go.dedis.ch/kyber/v4"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
	"github.com/dev-tnsq/Proof-of-Sus/config"
	"github.com/dev-tnsq/Proof-of-Sus/domain/amongus"
	"github.com/dev-tnsq/Proof-of-Sus/notify"
	"github.com/dev-tnsq/Proof-of-Sus/storage"
	"github.com/dev-tnsq/Proof-of-Sus/storage/sqlite"
	"github.com/dev-tnsq/Proof-of-Sus/verifier"
)

var colors = []string{
	"red", "blue", "green", "pink", "orange", "yellow", "black", "white",
	"purple", "brown", "cyan", "lime", "maroon", "rose", "tan",
}

// seat is one scripted player: a signing key, a prover secret and the
// commitments it joined with.
type seat struct {
	signer   *auth.Signer
	secret   kyber.Scalar
	name     string
	color    string
	hash     amongus.Hash
	role     amongus.Hash
	impostor bool
}

func (s *seat) addr() auth.Address { return s.signer.Address() }

// table drives a scripted game against a contract.
type table struct {
	contract   *amongus.Contract
	proofs     *verifier.DLEQ
	admin      *auth.Signer
	verifierID auth.Address
	seats      []*seat
	tasksToWin uint32
	maxPlayers uint32
	impostors  uint32
	nonce      int
	logger     *slog.Logger
}

func newTable(store storage.Store, cfg config.Config, logger *slog.Logger, pub amongus.Publisher) (*table, error) {
	admin, err := auth.NewSigner()
	if err != nil {
		return nil, err
	}
	verifierKey, err := auth.NewSigner()
	if err != nil {
		return nil, err
	}
	proofs := verifier.NewDLEQ()
	registry := verifier.NewRegistry()
	registry.Register(verifierKey.Address(), proofs)

	t := &table{
		contract: amongus.New(store, registry,
			amongus.WithLogger(logger),
			amongus.WithPublisher(pub),
		),
		proofs:     proofs,
		admin:      admin,
		verifierID: verifierKey.Address(),
		tasksToWin: cfg.TasksToWin,
		maxPlayers: cfg.MaxPlayers,
		impostors:  cfg.Impostors,
		logger:     logger,
	}
	for i := range int(cfg.Players) {
		signer, err := auth.NewSigner()
		if err != nil {
			return nil, err
		}
		s := &seat{
			signer:   signer,
			secret:   verifier.NewSecret(),
			name:     "player-" + strconv.Itoa(i+1),
			color:    colors[i%len(colors)],
			impostor: uint32(i) < cfg.Impostors,
		}
		role := "crew"
		if s.impostor {
			role = "impostor"
		}
		s.hash = digest("player", string(s.addr()))
		s.role = digest("role", role, string(s.addr()), s.secret.String())
		t.seats = append(t.seats, s)
	}
	return t, nil
}

// digest hashes the parts with a separator between them.
func digest(parts ...string) amongus.Hash {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	var out amongus.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// call signs an invocation of method over args and runs fn with it. args
// must be the contract's argument value for the same call.
func (t *table) call(ctx context.Context, signer *auth.Signer, method string, args any, fn func(context.Context) error) error {
	raw, err := amongus.EncodeArgs(args)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	signed, err := signer.Authorize(ctx, method, raw)
	if err != nil {
		return err
	}
	if err := fn(signed); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (t *table) nullifier(s *seat, action string) amongus.Hash {
	t.nonce++
	return digest("nullifier", action, string(s.addr()), strconv.Itoa(t.nonce))
}

// prove publishes a proof over statement and returns its hash.
func (t *table) prove(s *seat, statement []amongus.Hash) (amongus.Hash, error) {
	inputs := make([][32]byte, len(statement))
	for i, h := range statement {
		inputs[i] = h
	}
	proof, err := verifier.Prove(s.secret, inputs)
	if err != nil {
		return amongus.Hash{}, err
	}
	return t.proofs.Publish(proof), nil
}

func (t *table) proofInput(s *seat, action string, public ...amongus.Hash) (amongus.ProofInput, error) {
	in := amongus.ProofInput{Nullifier: t.nullifier(s, action), PublicInputs: public}
	h, err := t.prove(s, in.Statement())
	if err != nil {
		return amongus.ProofInput{}, err
	}
	in.ProofHash = h
	return in, nil
}

func (t *table) alive(ctx context.Context) (map[auth.Address]bool, error) {
	roster, err := t.contract.GetPlayers(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[auth.Address]bool, len(roster))
	for addr, p := range roster {
		out[addr] = p.Alive
	}
	return out, nil
}

func (t *table) deploy(ctx context.Context) error {
	admin := t.admin.Address()
	err := t.call(ctx, t.admin, "init", amongus.InitArgs{Admin: admin, ImpostorCount: t.impostors}, func(ctx context.Context) error {
		return t.contract.Init(ctx, admin, t.impostors)
	})
	if err != nil {
		return err
	}
	limits := amongus.ConfigArgs{MaxPlayers: t.maxPlayers, TasksToWin: t.tasksToWin}
	if err := t.call(ctx, t.admin, "configure_game", limits, func(ctx context.Context) error {
		return t.contract.ConfigureGame(ctx, admin, t.maxPlayers, t.tasksToWin)
	}); err != nil {
		return err
	}
	return t.call(ctx, t.admin, "set_verifier", amongus.VerifierArgs{Verifier: t.verifierID}, func(ctx context.Context) error {
		return t.contract.SetVerifier(ctx, admin, t.verifierID)
	})
}

func (t *table) join(ctx context.Context) error {
	for _, s := range t.seats {
		req := amongus.JoinRequest{Color: s.color, Name: s.name, PlayerHash: s.hash, RoleHash: s.role}
		if err := t.call(ctx, s.signer, "join_game", req, func(ctx context.Context) error {
			return t.contract.JoinGame(ctx, s.addr(), s.color, s.name, s.hash, s.role)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (t *table) start(ctx context.Context) error {
	return t.call(ctx, t.admin, "start_game", amongus.NoArgs{}, func(ctx context.Context) error {
		return t.contract.StartGame(ctx, t.admin.Address())
	})
}

func (t *table) move(ctx context.Context) error {
	for i, s := range t.seats {
		x, y := uint32(10+2*i), uint32(5+i)
		if err := t.call(ctx, s.signer, "submit_move", amongus.MoveArgs{X: x, Y: y}, func(ctx context.Context) error {
			return t.contract.SubmitMove(ctx, s.addr(), x, y)
		}); err != nil {
			return err
		}
	}
	return nil
}

// kill has the first impostor take out the last crewmate. The proof is
// checked with the verifier before it is submitted.
func (t *table) kill(ctx context.Context) error {
	killer, victim := t.seats[0], t.seats[len(t.seats)-1]
	in, err := t.proofInput(killer, "kill", killer.role, victim.hash)
	if err != nil {
		return err
	}
	ok, err := t.contract.VerifyZKProof(ctx, in.ProofHash, in.Statement())
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("kill proof rejected before submission")
	}
	args := amongus.KillArgs{Victim: victim.addr(), Proof: in}
	return t.call(ctx, killer.signer, "submit_kill_proof", args, func(ctx context.Context) error {
		return t.contract.SubmitKillProof(ctx, killer.addr(), victim.addr(), in)
	})
}

// meeting is called by a surviving crewmate. Crew vote for the first
// impostor, impostors vote for the caller, and the admin finalizes.
func (t *table) meeting(ctx context.Context) error {
	alive, err := t.alive(ctx)
	if err != nil {
		return err
	}
	var caller *seat
	for _, s := range t.seats {
		if !s.impostor && alive[s.addr()] {
			caller = s
			break
		}
	}
	if caller == nil {
		return errors.New("no crewmate left to call a meeting")
	}
	if err := t.call(ctx, caller.signer, "start_meeting", amongus.NoArgs{}, func(ctx context.Context) error {
		return t.contract.StartMeeting(ctx, caller.addr())
	}); err != nil {
		return err
	}

	suspect := t.seats[0]
	for _, s := range t.seats {
		if !alive[s.addr()] {
			continue
		}
		vote := amongus.VoteInput{TargetHash: suspect.hash, Nullifier: t.nullifier(s, "vote")}
		if s.impostor {
			vote.TargetHash = caller.hash
		}
		if vote.ProofHash, err = t.prove(s, vote.Statement()); err != nil {
			return err
		}
		if err := t.call(ctx, s.signer, "submit_vote", vote, func(ctx context.Context) error {
			return t.contract.SubmitVote(ctx, s.addr(), vote)
		}); err != nil {
			return err
		}
	}

	var ejected bool
	if err := t.call(ctx, t.admin, "finalize_meeting", amongus.TargetArgs{Target: suspect.hash}, func(ctx context.Context) error {
		var err error
		ejected, err = t.contract.FinalizeMeeting(ctx, t.admin.Address(), suspect.hash)
		return err
	}); err != nil {
		return err
	}
	t.logger.Info("meeting finalized", "suspect", suspect.name, "ejected", ejected)
	return nil
}

// tasks has the surviving crew complete tasks in turn until the game ends.
func (t *table) tasks(ctx context.Context) error {
	alive, err := t.alive(ctx)
	if err != nil {
		return err
	}
	var crew []*seat
	for _, s := range t.seats {
		if !s.impostor && alive[s.addr()] {
			crew = append(crew, s)
		}
	}
	if len(crew) == 0 {
		return errors.New("no crewmate left to complete tasks")
	}
	for n := range int(t.tasksToWin) {
		s := crew[n%len(crew)]
		in, err := t.proofInput(s, "task", digest("task", s.name, strconv.Itoa(n)))
		if err != nil {
			return err
		}
		if err := t.call(ctx, s.signer, "submit_task_proof", in, func(ctx context.Context) error {
			return t.contract.SubmitTaskProof(ctx, s.addr(), in)
		}); err != nil {
			return err
		}
		state, err := t.contract.GetGameState(ctx)
		if err != nil {
			return err
		}
		if state.Phase == amongus.PhaseEnded {
			return nil
		}
	}
	return nil
}

type step struct {
	title string
	run   func(context.Context) error
}

// runDemo plays a scripted game on a fresh database and renders the outcome.
func runDemo(ctx context.Context, cfg config.Config, logger *slog.Logger) (amongus.GameState, error) {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return amongus.GameState{}, err
	}
	defer store.Close()

	var feed notify.Recorder
	t, err := newTable(store, cfg, logger, notify.Multi{notify.NewLogger(logger), &feed})
	if err != nil {
		return amongus.GameState{}, err
	}

	steps := []step{
		{"Deploying the contract", t.deploy},
		{"Players joining the lobby", t.join},
		{"Starting the game", t.start},
		{"Players moving", t.move},
		{"Impostor striking", t.kill},
		{"Emergency meeting", t.meeting},
		{"Crew completing tasks", t.tasks},
	}
	for _, st := range steps {
		spinner, _ := pterm.DefaultSpinner.Start(st.title + " ...")
		if err := st.run(ctx); err != nil {
			spinner.Fail(err.Error())
			if errors.Is(err, amongus.ErrAlreadyInitialized) {
				return amongus.GameState{}, fmt.Errorf("%s already holds a game: %w", cfg.DBPath, err)
			}
			return amongus.GameState{}, err
		}
		spinner.Success()
		state, err := t.contract.GetGameState(ctx)
		if err != nil {
			return amongus.GameState{}, err
		}
		if state.Phase == amongus.PhaseEnded {
			break
		}
	}

	snap, err := readSnapshot(ctx, t.contract, store)
	if err != nil {
		return amongus.GameState{}, err
	}
	journal := t.contract.Ledger()
	if err := journal.Verify(); err != nil {
		return amongus.GameState{}, fmt.Errorf("journal: %w", err)
	}
	printSnapshot(snap)
	printJournal(journal.Blocks())
	logger.Info("demo finished", "notifications", len(feed.Events()), "blocks", journal.Len())
	return snap.State, nil
}
