package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/dev-tnsq/Proof-of-Sus/auth"
	"github.com/dev-tnsq/Proof-of-Sus/config"
	"github.com/dev-tnsq/Proof-of-Sus/domain/amongus"
	"github.com/dev-tnsq/Proof-of-Sus/ledger"
	"github.com/dev-tnsq/Proof-of-Sus/storage"
	"github.com/dev-tnsq/Proof-of-Sus/storage/sqlite"
	"github.com/dev-tnsq/Proof-of-Sus/verifier"
)

// snapshot is everything the CLI shows about a stored game.
type snapshot struct {
	State  amongus.GameState
	Config amongus.GameConfig
	Roster amongus.Roster
	Keys   int
}

type keyLister interface {
	Keys(ctx context.Context) ([]storage.Key, error)
}

func readSnapshot(ctx context.Context, c *amongus.Contract, store keyLister) (snapshot, error) {
	var snap snapshot
	var err error
	if snap.State, err = c.GetGameState(ctx); err != nil {
		return snapshot{}, err
	}
	if snap.Config, err = c.GetConfig(ctx); err != nil {
		return snapshot{}, err
	}
	if snap.Roster, err = c.GetPlayers(ctx); err != nil {
		return snapshot{}, err
	}
	keys, err := store.Keys(ctx)
	if err != nil {
		return snapshot{}, err
	}
	snap.Keys = len(keys)
	return snap, nil
}

// runState prints the game persisted at cfg.DBPath.
func runState(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	c := amongus.New(store, verifier.NewRegistry(), amongus.WithLogger(logger))
	snap, err := readSnapshot(ctx, c, store)
	if err != nil {
		return err
	}
	if snap.Keys == 0 {
		pterm.Warning.Printfln("No game recorded in %s", cfg.DBPath)
	}
	printSnapshot(snap)

	if err := c.LoadJournal(ctx); err != nil {
		return err
	}
	journal := c.Ledger()
	if err := journal.Verify(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if journal.Len() > 1 {
		printJournal(journal.Blocks())
	}
	return nil
}

func rosterTable(r amongus.Roster) pterm.TableData {
	data := pterm.TableData{{"Name", "Color", "Address", "Position", "Tasks", "Status", "Voted"}}
	for _, addr := range r.Addresses() {
		p := r[addr]
		status := pterm.LightGreen("alive")
		if !p.Alive {
			status = pterm.LightRed("dead")
		}
		voted := ""
		if p.HasVoted() {
			voted = p.VotedForHash.String()[:8]
		}
		data = append(data, []string{
			p.Name,
			p.Color,
			addr.Short(),
			fmt.Sprintf("(%d,%d)", p.X, p.Y),
			strconv.FormatUint(uint64(p.TasksDone), 10),
			status,
			voted,
		})
	}
	return data
}

func journalTable(blocks []ledger.Block) pterm.TableData {
	data := pterm.TableData{{"#", "Method", "Caller", "Writes", "Hash"}}
	for _, b := range blocks {
		data = append(data, []string{
			strconv.Itoa(b.Index),
			b.Tx.Method,
			auth.Address(b.Tx.Caller).Short(),
			strconv.Itoa(len(b.Tx.Writes)),
			b.Hash[:12],
		})
	}
	return data
}

func statePanel(state amongus.GameState, cfg amongus.GameConfig, keys int) pterm.Panel {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	meeting := pterm.LightRed("no")
	if state.MeetingActive {
		meeting = pterm.LightGreen("yes")
	}
	body := pterm.Sprintfln("Phase: %s\nRound: %d\nMeeting: %s\nImpostors: %d\nTasks to win: %d\nMax players: %d\nStored keys: %d",
		state.Phase, state.Round, meeting, state.ImpostorCount, cfg.TasksToWin, cfg.MaxPlayers, keys)
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|GAME|")).WithTitleTopCenter().Sprint(body)}
}

// winnerPanel reports false while nobody has won.
func winnerPanel(r amongus.Roster, w amongus.Winner) (pterm.Panel, bool) {
	if w == amongus.WinnerNone {
		return pterm.Panel{}, false
	}
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	body := pterm.Sprintfln("%s win with %d tasks done and %d players alive",
		pterm.LightCyan(w.String()), r.TotalTasks(), r.CountAlive())
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightGreen("|WINNER|")).WithTitleTopCenter().Sprint(body)}, true
}

func printSnapshot(snap snapshot) {
	if len(snap.Roster) > 0 {
		_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(rosterTable(snap.Roster)).Render()
	}
	panels := []pterm.Panel{statePanel(snap.State, snap.Config, snap.Keys)}
	if p, ok := winnerPanel(snap.Roster, snap.State.Winner); ok {
		panels = append(panels, p)
	}
	_ = pterm.DefaultPanel.WithPanels([][]pterm.Panel{panels}).Render()
}

func printJournal(blocks []ledger.Block) {
	pterm.DefaultSection.Println("Journal")
	_ = pterm.DefaultTable.WithHasHeader().WithData(journalTable(blocks)).Render()
}
