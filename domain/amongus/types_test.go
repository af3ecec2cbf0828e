package amongus

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{PhaseLobby, PhasePlaying, PhaseMeeting, PhaseEnded} {
		parsed, err := ParsePhase(p.String())
		if err != nil || parsed != p {
			t.Fatalf("phase %s did not round trip: %v %v", p, parsed, err)
		}
	}
	if _, err := ParsePhase("sabotage"); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
	if _, err := Phase(9).MarshalText(); err == nil {
		t.Fatal("expected error marshaling an unknown phase")
	}
}

func TestParseWinner(t *testing.T) {
	cases := map[string]Winner{"none": WinnerNone, "crew": WinnerCrew, "impostor": WinnerImpostor, "impost": WinnerImpostor}
	for in, want := range cases {
		got, err := ParseWinner(in)
		if err != nil || got != want {
			t.Fatalf("ParseWinner(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseWinner("ghost"); !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("expected ErrInvalidWinner, got %v", err)
	}
}

// TestGameStateJSON verifies the stored shape uses labels, not numbers, for
// the enums.
func TestGameStateJSON(t *testing.T) {
	st := GameState{Phase: PhaseMeeting, Round: 3, MeetingActive: true, ImpostorCount: 2, Winner: WinnerNone}
	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatal(err)
	}
	if generic["phase"] != "meeting" || generic["winner"] != "none" {
		t.Fatalf("unexpected encoding %s", raw)
	}
	var back GameState
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back != st {
		t.Fatalf("decoded %+v, want %+v", back, st)
	}
}

func TestHashText(t *testing.T) {
	h := fill(0xab)
	text, _ := h.MarshalText()
	var back Hash
	if err := back.UnmarshalText(text); err != nil || back != h {
		t.Fatalf("hash did not round trip: %v", err)
	}
	if err := back.UnmarshalText([]byte("abcd")); err == nil {
		t.Fatal("expected error for short hash")
	}
	if !(Hash{}).IsZero() || h.IsZero() {
		t.Fatal("IsZero is wrong")
	}
}

func TestRosterAggregates(t *testing.T) {
	r := Roster{
		"a": {Alive: true, TasksDone: 2, PlayerHash: fill(1), VotedForHash: fill(3)},
		"b": {Alive: true, TasksDone: 1, PlayerHash: fill(2), VotedForHash: fill(3)},
		"c": {Alive: false, TasksDone: 4, PlayerHash: fill(3), VotedForHash: fill(3)},
		"d": {Alive: true, PlayerHash: fill(4)},
	}
	if r.CountAlive() != 3 {
		t.Fatalf("expected 3 alive, got %d", r.CountAlive())
	}
	if r.TotalTasks() != 7 {
		t.Fatalf("dead players' tasks still count: expected 7, got %d", r.TotalTasks())
	}
	votes, alive := r.Tally(fill(3))
	if votes != 2 || alive != 3 {
		t.Fatalf("tally = %d/%d, want 2/3", votes, alive)
	}
	if !r.HasHash(fill(3)) || r.HasHash(fill(9)) {
		t.Fatal("HasHash is wrong")
	}
	addrs := r.Addresses()
	if len(addrs) != 4 || addrs[0] != "a" || addrs[3] != "d" {
		t.Fatalf("addresses not sorted: %v", addrs)
	}
}

func TestStatements(t *testing.T) {
	v := VoteInput{TargetHash: fill(1), ProofHash: fill(2), Nullifier: fill(3)}
	if s := v.Statement(); len(s) != 1 || s[0] != fill(3) {
		t.Fatalf("vote statement should be [nullifier], got %v", s)
	}
	inputs := []Hash{fill(7), fill(8)}
	p := ProofInput{ProofHash: fill(2), Nullifier: fill(9), PublicInputs: inputs}
	s := p.Statement()
	if len(s) != 3 || s[2] != fill(9) {
		t.Fatalf("nullifier should be appended last, got %v", s)
	}
	s[0] = fill(0)
	if inputs[0] != fill(7) {
		t.Fatal("statement aliases the declared inputs")
	}
}

func TestErrorMatching(t *testing.T) {
	specific := ErrWrongPhase.withMessage("joining only allowed in lobby")
	if !errors.Is(specific, ErrWrongPhase) {
		t.Fatal("copies must match their sentinel by code")
	}
	if errors.Is(specific, ErrGameEnded) {
		t.Fatal("different codes must not match")
	}
	cause := errors.New("disk on fire")
	wrapped := ErrStorage.wrap(cause)
	if !errors.Is(wrapped, cause) {
		t.Fatal("wrapped cause should be reachable")
	}
	if kind, ok := KindOf(wrapped); !ok || kind != KindStorage {
		t.Fatalf("expected storage kind, got %v %v", kind, ok)
	}
	if _, ok := KindOf(cause); ok {
		t.Fatal("plain errors have no kind")
	}
	if ErrStorage.Cause != nil {
		t.Fatal("wrap must not modify the sentinel")
	}
}
