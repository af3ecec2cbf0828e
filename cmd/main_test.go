package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"github.com/dev-tnsq/Proof-of-Sus/config"
	"github.com/dev-tnsq/Proof-of-Sus/domain/amongus"
	"github.com/dev-tnsq/Proof-of-Sus/storage/sqlite"
	"github.com/dev-tnsq/Proof-of-Sus/verifier"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func demoConfig(t *testing.T) config.Config {
	t.Helper()
	pterm.DisableOutput()
	t.Cleanup(pterm.EnableOutput)
	return config.Config{
		DBPath:     filepath.Join(t.TempDir(), "game.db"),
		LogLevel:   slog.LevelInfo,
		Players:    5,
		Impostors:  1,
		MaxPlayers: 15,
		TasksToWin: 6,
	}
}

func openSnapshot(t *testing.T, path string) snapshot {
	t.Helper()
	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	snap, err := readSnapshot(context.Background(), amongus.New(store, verifier.NewRegistry()), store)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	return snap
}

// TestDemoEndsWithCrewWin plays the default script and checks the persisted
// outcome: the victim and the ejected impostor are dead and crew won on tasks.
func TestDemoEndsWithCrewWin(t *testing.T) {
	cfg := demoConfig(t)

	state, err := runDemo(context.Background(), cfg, quiet)
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	if state.Phase != amongus.PhaseEnded || state.Winner != amongus.WinnerCrew {
		t.Fatalf("expected crew win, got %+v", state)
	}

	snap := openSnapshot(t, cfg.DBPath)
	if snap.State != state {
		t.Fatalf("stored state %+v differs from reported %+v", snap.State, state)
	}
	if len(snap.Roster) != 5 {
		t.Fatalf("expected 5 players, got %d", len(snap.Roster))
	}
	if alive := snap.Roster.CountAlive(); alive != 3 {
		t.Fatalf("expected 3 survivors, got %d", alive)
	}
	if total := snap.Roster.TotalTasks(); total != 6 {
		t.Fatalf("expected 6 tasks, got %d", total)
	}
	for _, p := range snap.Roster {
		if p.Name == "player-1" && p.Alive {
			t.Fatal("the impostor should have been ejected")
		}
	}
}

// TestDemoImpostorWinsWhenCrewIsOutnumbered verifies the script stops as soon
// as the kill hands impostors the game.
func TestDemoImpostorWinsWhenCrewIsOutnumbered(t *testing.T) {
	cfg := demoConfig(t)
	cfg.Players = 4
	cfg.Impostors = 3

	state, err := runDemo(context.Background(), cfg, quiet)
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	if state.Winner != amongus.WinnerImpostor {
		t.Fatalf("expected impostor win, got %+v", state)
	}
	snap := openSnapshot(t, cfg.DBPath)
	if snap.Roster.TotalTasks() != 0 {
		t.Fatal("no task should run after the game ended")
	}
}

// TestDemoJournalIsPersisted verifies that a later process reads back the
// demo's journal from the database.
func TestDemoJournalIsPersisted(t *testing.T) {
	cfg := demoConfig(t)
	if _, err := runDemo(context.Background(), cfg, quiet); err != nil {
		t.Fatalf("demo: %v", err)
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	c := amongus.New(store, verifier.NewRegistry(), amongus.WithLogger(quiet))
	if err := c.LoadJournal(context.Background()); err != nil {
		t.Fatalf("load journal: %v", err)
	}
	journal := c.Ledger()
	if err := journal.Verify(); err != nil {
		t.Fatalf("journal should verify: %v", err)
	}
	first, _ := journal.ByIndex(1)
	if first.Tx.Method != "init" {
		t.Fatalf("first block should be init, got %s", first.Tx.Method)
	}
	if last := journal.Latest(); last.Tx.Method != "submit_task_proof" {
		t.Fatalf("last block should be the winning task, got %s", last.Tx.Method)
	}
}

func TestDemoRefusesUsedDatabase(t *testing.T) {
	cfg := demoConfig(t)
	if _, err := runDemo(context.Background(), cfg, quiet); err != nil {
		t.Fatalf("first demo: %v", err)
	}
	_, err := runDemo(context.Background(), cfg, quiet)
	if !errors.Is(err, amongus.ErrAlreadyInitialized) {
		t.Fatalf("expected already initialized, got %v", err)
	}
}

func TestStateCommand(t *testing.T) {
	cfg := demoConfig(t)
	ctx := context.Background()

	if err := run(ctx, []string{"state"}, cfg, quiet); err != nil {
		t.Fatalf("state on empty db: %v", err)
	}
	if snap := openSnapshot(t, cfg.DBPath); snap.Keys != 0 || snap.State != amongus.DefaultState() {
		t.Fatalf("empty db should report defaults, got %+v", snap)
	}
	if err := run(ctx, []string{"demo"}, cfg, quiet); err != nil {
		t.Fatalf("demo: %v", err)
	}
	if err := run(ctx, []string{"state"}, cfg, quiet); err != nil {
		t.Fatalf("state after demo: %v", err)
	}
}

func TestRunUsage(t *testing.T) {
	cfg := demoConfig(t)
	for _, args := range [][]string{nil, {"demo", "state"}, {"deploy"}} {
		if err := run(context.Background(), args, cfg, quiet); !errors.Is(err, config.ErrUsage) {
			t.Fatalf("args %v: expected usage error, got %v", args, err)
		}
	}
}

func TestRosterTableOrder(t *testing.T) {
	roster := amongus.Roster{
		"bb": {Name: "second", Alive: true},
		"aa": {Name: "first", Alive: false, TasksDone: 2},
	}
	data := rosterTable(roster)
	if len(data) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(data))
	}
	if data[1][0] != "first" || data[2][0] != "second" {
		t.Fatalf("rows not in address order: %v", data)
	}
	if data[1][4] != "2" || !strings.Contains(data[1][5], "dead") {
		t.Fatalf("unexpected row %v", data[1])
	}
}

func TestWinnerPanel(t *testing.T) {
	if _, ok := winnerPanel(nil, amongus.WinnerNone); ok {
		t.Fatal("no panel expected without a winner")
	}
	if _, ok := winnerPanel(amongus.Roster{}, amongus.WinnerCrew); !ok {
		t.Fatal("expected a winner panel")
	}
}

func TestPtermLevel(t *testing.T) {
	cases := map[slog.Level]pterm.LogLevel{
		slog.LevelDebug: pterm.LogLevelDebug,
		slog.LevelInfo:  pterm.LogLevelInfo,
		slog.LevelWarn:  pterm.LogLevelWarn,
		slog.LevelError: pterm.LogLevelError,
	}
	for in, want := range cases {
		if got := ptermLevel(in); got != want {
			t.Fatalf("level %v: got %v, want %v", in, got, want)
		}
	}
}
