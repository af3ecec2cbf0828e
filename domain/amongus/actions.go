package amongus

import (
	"context"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
)

// ActionEngine runs the proof-gated gameplay actions. Each one checks the
// nullifier, verifies the proof over the declared inputs with the nullifier
// appended, mutates, consumes the nullifier and then evaluates the win
// conditions over the whole roster.
type ActionEngine struct {
	state      *StateMachine
	roster     *RosterManager
	nullifiers *NullifierGuard
	proofs     *ProofGate
	events     *EventLog
}

// Move updates a living player's position.
func (e *ActionEngine) Move(ctx context.Context, player auth.Address, x, y uint32) error {
	if _, err := e.state.Require(ctx, PhasePlaying, "movement not allowed in current phase"); err != nil {
		return err
	}
	if _, err := e.roster.Move(ctx, player, x, y); err != nil {
		return err
	}
	e.events.emit(Event{Topic: TopicMoved, Caller: player, X: x, Y: y})
	return nil
}

// Task credits one completed task. The crew wins once the roster's task
// total reaches the configured threshold.
func (e *ActionEngine) Task(ctx context.Context, player auth.Address, proof ProofInput) error {
	if _, err := e.state.Require(ctx, PhasePlaying, "task submission not allowed in current phase"); err != nil {
		return err
	}
	if err := e.nullifiers.Check(ctx, proof.Nullifier); err != nil {
		return err
	}
	roster, p, err := e.roster.Living(ctx, player, "dead player cannot submit tasks")
	if err != nil {
		return err
	}
	if err := e.proofs.Require(ctx, proof.ProofHash, proof.Statement(), "task"); err != nil {
		return err
	}

	p.TasksDone++
	roster[player] = p
	if err := e.roster.Save(ctx, roster); err != nil {
		return err
	}
	if err := e.nullifiers.Consume(ctx, proof.Nullifier); err != nil {
		return err
	}

	cfg, err := e.state.Config(ctx)
	if err != nil {
		return err
	}
	if roster.TotalTasks() >= uint64(cfg.TasksToWin) {
		return e.win(ctx, player, WinnerCrew)
	}
	return nil
}

// Kill marks victim dead. The impostors win once the living players are no
// more than the impostor count.
func (e *ActionEngine) Kill(ctx context.Context, killer, victim auth.Address, proof ProofInput) error {
	st, err := e.state.Require(ctx, PhasePlaying, "kills not allowed in current phase")
	if err != nil {
		return err
	}
	if err := e.nullifiers.Check(ctx, proof.Nullifier); err != nil {
		return err
	}
	roster, _, err := e.roster.Living(ctx, killer, "dead player cannot kill")
	if err != nil {
		return err
	}
	if killer == victim {
		return ErrSelfKill
	}
	target, ok := roster[victim]
	if !ok {
		return ErrPlayerNotFound.withMessage("victim not found")
	}
	if !target.Alive {
		return ErrVictimDead
	}
	if err := e.proofs.Require(ctx, proof.ProofHash, proof.Statement(), "kill"); err != nil {
		return err
	}

	target.Alive = false
	roster[victim] = target
	if err := e.roster.Save(ctx, roster); err != nil {
		return err
	}
	if err := e.nullifiers.Consume(ctx, proof.Nullifier); err != nil {
		return err
	}

	if roster.CountAlive() <= st.ImpostorCount {
		if err := e.win(ctx, killer, WinnerImpostor); err != nil {
			return err
		}
	}
	e.events.emit(Event{Topic: TopicKilled, Caller: killer, Victim: victim})
	return nil
}

// ImpostorWin ends the game for the impostors on an accepted proof, in any
// phase before Ended. No roster condition is checked.
func (e *ActionEngine) ImpostorWin(ctx context.Context, caller auth.Address, proof ProofInput) error {
	if _, err := e.state.Active(ctx); err != nil {
		return err
	}
	if err := e.nullifiers.Check(ctx, proof.Nullifier); err != nil {
		return err
	}
	if err := e.proofs.Require(ctx, proof.ProofHash, proof.Statement(), "impostor win"); err != nil {
		return err
	}
	if err := e.nullifiers.Consume(ctx, proof.Nullifier); err != nil {
		return err
	}
	return e.win(ctx, caller, WinnerImpostor)
}

func (e *ActionEngine) win(ctx context.Context, caller auth.Address, w Winner) error {
	if _, err := e.state.SetWinner(ctx, w); err != nil {
		return err
	}
	e.events.emit(Event{Topic: TopicWinner, Caller: caller, Winner: w})
	return nil
}
