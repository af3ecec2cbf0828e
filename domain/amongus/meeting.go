package amongus

import (
	"context"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
)

// MeetingEngine runs meetings: opening, ballots, tally and ejection.
type MeetingEngine struct {
	state      *StateMachine
	roster     *RosterManager
	nullifiers *NullifierGuard
	proofs     *ProofGate
	events     *EventLog
}

// Start opens a meeting called by a living player and clears the ballots
// of every living player.
func (e *MeetingEngine) Start(ctx context.Context, caller auth.Address) (GameState, error) {
	if _, err := e.state.Active(ctx); err != nil {
		return GameState{}, err
	}
	if _, _, err := e.roster.Living(ctx, caller, "dead player cannot start meeting"); err != nil {
		return GameState{}, err
	}
	st, err := e.state.EnterMeeting(ctx)
	if err != nil {
		return GameState{}, err
	}
	if err := e.roster.ClearVotes(ctx); err != nil {
		return GameState{}, err
	}
	e.events.emit(Event{Topic: TopicMeeting, Caller: caller, Round: st.Round})
	return st, nil
}

// Vote records voter's ballot once its proof over [nullifier] is accepted.
func (e *MeetingEngine) Vote(ctx context.Context, voter auth.Address, vote VoteInput) error {
	if _, err := e.state.Require(ctx, PhaseMeeting, "voting not allowed in current phase"); err != nil {
		return err
	}
	if err := e.nullifiers.Check(ctx, vote.Nullifier); err != nil {
		return err
	}
	roster, p, err := e.roster.Living(ctx, voter, "dead player cannot vote")
	if err != nil {
		return err
	}
	if p.HasVoted() {
		return ErrAlreadyVoted
	}
	if err := e.proofs.Require(ctx, vote.ProofHash, vote.Statement(), "vote"); err != nil {
		return err
	}

	p.VotedForHash = vote.TargetHash
	roster[voter] = p
	if err := e.roster.Save(ctx, roster); err != nil {
		return err
	}
	if err := e.nullifiers.Consume(ctx, vote.Nullifier); err != nil {
		return err
	}
	e.events.emit(Event{Topic: TopicVoted, Caller: voter, Target: vote.TargetHash})
	return nil
}

// Finalize tallies the ballots of living players for target and ejects the
// first living entry holding that hash on a strict majority. Play resumes
// either way. It reports whether someone was ejected.
func (e *MeetingEngine) Finalize(ctx context.Context, caller auth.Address, target Hash) (bool, error) {
	st, err := e.state.InMeeting(ctx)
	if err != nil {
		return false, err
	}
	roster, err := e.roster.Load(ctx)
	if err != nil {
		return false, err
	}
	votes, alive := roster.Tally(target)
	if alive == 0 {
		return false, ErrNoAliveVoters
	}

	ejected := false
	if uint64(votes)*2 > uint64(alive) {
		for _, addr := range roster.Addresses() {
			p := roster[addr]
			if p.Alive && p.PlayerHash == target {
				p.Alive = false
				roster[addr] = p
				ejected = true
				break
			}
		}
	}
	if ejected {
		if err := e.roster.Save(ctx, roster); err != nil {
			return false, err
		}
		e.events.emit(Event{Topic: TopicEjected, Caller: caller, Round: st.Round, Target: target})
	} else {
		e.events.emit(Event{Topic: TopicSkipped, Caller: caller, Round: st.Round, Target: target})
	}

	if _, err := e.state.Resume(ctx); err != nil {
		return false, err
	}
	return ejected, nil
}

// End closes the meeting without a tally.
func (e *MeetingEngine) End(ctx context.Context, caller auth.Address) (GameState, error) {
	st, err := e.state.Resume(ctx)
	if err != nil {
		return GameState{}, err
	}
	e.events.emit(Event{Topic: TopicResume, Caller: caller, Round: st.Round})
	return st, nil
}
