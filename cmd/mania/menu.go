package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/platform/tui"
	"github.com/vovakirdan/tui-mania/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with an interactive chart picker",
	Long: `Start mania in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to play, P to practice.
After a run ends you return to the picker.

Controls:
  Up/Down/j/k  - Navigate
  Enter        - Play chart
  P            - Practice chart (checkpoints, not saved)
  Tab          - Scoreboard
  Q            - Quit

Examples:
  mania menu
  mania menu --charts ./songs
  mania menu --db ./runs.db`,
	Run: runMenuCmd,
}

func init() {
	// Uses global flags from main.go (--db, --config, --charts)
}

func runMenuCmd(_ *cobra.Command, _ []string) {
	cfg, err := loadGameConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		store = nil
	}

	// Get terminal size for the scoreboard layout
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	// Picker loop
	for {
		result, err := tui.RunPicker(flagChartDir, store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}

		if result.Quit {
			break
		}

		if result.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(store, width, height)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue // Back to picker
			}
			break // User quit from scoreboard
		}

		c, err := chart.LoadFile(result.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		if c.Keys() > len(cfg.Keys) {
			fmt.Fprintf(os.Stderr, "Error: chart needs %d lanes but only %d keys are bound\n",
				c.Keys(), len(cfg.Keys))
			continue
		}

		if err := tui.RunPlay(c, cfg, store, result.Practice); err != nil {
			fmt.Fprintf(os.Stderr, "Error running chart: %v\n", err)
		}

		// Loop back to picker
	}

	if store != nil {
		store.Close()
	}
}
