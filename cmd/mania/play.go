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

var (
	flagRate     float64
	flagPractice bool
	flagPreset   string
)

var playCmd = &cobra.Command{
	Use:   "play <chart>",
	Short: "Play a chart",
	Long: `Play the specified chart file.

Controls:
  D/F/J/K    - Lane keys (configurable)
  P          - Pause/resume
  +/-        - Playback rate up/down
  M          - Mark checkpoint (practice mode)
  R          - Restore checkpoint (practice mode)
  Esc        - Pause, then back
  Q/Ctrl+C   - Quit

Difficulty presets (hit window tightness):
  easy, normal, hard, expert

Examples:
  mania play charts/demo.yaml
  mania play charts/demo.yaml --rate 1.3
  mania play charts/demo.yaml --practice
  mania play charts/demo.yaml --preset expert
  mania play charts/demo.yaml --config ./my-config.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlayCmd,
}

func init() {
	playCmd.Flags().Float64Var(&flagRate, "rate", 0, "Playback rate override (0.5 to 2.0)")
	playCmd.Flags().BoolVar(&flagPractice, "practice", false, "Practice mode: checkpoints on, run not saved")
	playCmd.Flags().StringVar(&flagPreset, "preset", "", "Difficulty preset: easy, normal, hard, expert")
}

func runPlayCmd(cmd *cobra.Command, args []string) {
	c, err := chart.LoadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadGameConfig(flagPreset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagRate != 0 {
		cfg.Playback.Rate = flagRate
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if c.Keys() > len(cfg.Keys) {
		fmt.Fprintf(os.Stderr, "Error: chart needs %d lanes but only %d keys are bound\n",
			c.Keys(), len(cfg.Keys))
		os.Exit(1)
	}

	// A tiny terminal makes the playfield unreadable; warn rather than fail.
	if w, _, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil && w < 40 {
		fmt.Fprintln(os.Stderr, "Warning: terminal narrower than 40 columns")
	}

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		// Continue without storage - the run still plays
		store = nil
	}

	runErr := tui.RunPlay(c, cfg, store, flagPractice)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running chart: %v\n", runErr)
		os.Exit(1)
	}
}
