package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/platform/tui"
	"github.com/vovakirdan/tui-mania/internal/replay"
	"github.com/vovakirdan/tui-mania/internal/storage"
)

var replayCmd = &cobra.Command{
	Use:   "replay <run-id>",
	Short: "Watch a recorded run",
	Long: `Play back a saved run on screen.

The run's inputs and rate changes are fed through a fresh engine on the
exact schedule they were recorded with, so what you watch is what was
played. The chart file is located by hash in the chart directory.

Examples:
  mania replay 3
  mania replay 3 --charts ./songs`,
	Args: cobra.ExactArgs(1),
	Run:  runReplayCmd,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <run-id>",
	Short: "Check a recorded run against its replay log",
	Long: `Re-run a saved run's replay log headless and compare the outcome
against the recorded score, combo, judgement counts, and ghost taps.

A divergence means the stored result does not match what the inputs
produce and the run should not be trusted.

Examples:
  mania verify 3`,
	Args: cobra.ExactArgs(1),
	Run:  runVerifyCmd,
}

// loadRunArtifacts resolves a run ID to its record, decoded replay log, and
// the chart it was recorded against.
func loadRunArtifacts(idArg string) (*storage.RunRecord, *replay.Log, *chart.Chart, *storage.Store, error) {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("invalid run ID %q", idArg)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("cannot open runs database: %w", err)
	}

	rec, err := store.RunByID(id)
	if err != nil {
		store.Close()
		return nil, nil, nil, nil, err
	}
	if rec == nil {
		store.Close()
		return nil, nil, nil, nil, fmt.Errorf("run %d not found", id)
	}

	payload, err := store.ReplayPayload(id)
	if err != nil {
		store.Close()
		return nil, nil, nil, nil, err
	}
	if payload == nil {
		store.Close()
		return nil, nil, nil, nil, fmt.Errorf("run %d has no replay log (practice runs are not recorded)", id)
	}

	lg, err := replay.Unmarshal(payload)
	if err != nil {
		store.Close()
		return nil, nil, nil, nil, err
	}

	c, err := findChartByHash(flagChartDir, lg.ChartHash)
	if err != nil {
		store.Close()
		return nil, nil, nil, nil, err
	}

	return rec, lg, c, store, nil
}

// findChartByHash scans the chart directory for the file whose note layout
// matches the hash.
func findChartByHash(dir, hash string) (*chart.Chart, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan charts in %s: %w", dir, err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		c, err := chart.LoadFile(path)
		if err != nil {
			continue
		}
		if c.Hash() == hash {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no chart in %s matches the run (hash %s)", dir, hash)
}

func runReplayCmd(cmd *cobra.Command, args []string) {
	rec, lg, c, store, err := loadRunArtifacts(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cfg, err := loadGameConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Replaying run #%d - %s (%d, %.2f%%)\n", rec.ID, rec.Title, rec.Score, rec.Accuracy)

	if err := tui.RunWatch(c, lg, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runVerifyCmd(cmd *cobra.Command, args []string) {
	rec, lg, c, store, err := loadRunArtifacts(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cfg, err := loadGameConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	recorded := replay.Result{
		Score:      rec.Score,
		MaxCombo:   rec.MaxCombo,
		TierCounts: rec.TierCounts,
		GhostTaps:  rec.GhostTaps,
	}

	if err := replay.Verify(c, lg, recorded, cfg.Scoring); err != nil {
		fmt.Fprintf(os.Stderr, "Run #%d FAILED verification: %v\n", rec.ID, err)
		os.Exit(1)
	}

	fmt.Printf("Run #%d verified: score %d, accuracy %.2f%%, max combo %d\n",
		rec.ID, rec.Score, rec.Accuracy, rec.MaxCombo)
}
