// mania is a vertical-scrolling rhythm game for the terminal.
//
// Usage:
//
//	mania play <chart>       - Play a chart
//	mania menu               - Interactive chart picker
//	mania replay <run-id>    - Watch a recorded run
//	mania verify <run-id>    - Check a recorded run against its replay
//	mania scores [chart]     - Show saved runs
//	mania charts [dir]       - List chart files
//	mania serve              - Start SSH server for remote play
//
// Global flags:
//
//	--db <path>       - Set database path (default: ~/.mania/runs.db)
//	--config <path>   - Path to custom game config YAML
//	--charts <dir>    - Chart directory (default: ./charts)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-mania/internal/config"
	"github.com/vovakirdan/tui-mania/internal/platform/tui"
)

var (
	// Global flags
	flagDBPath   string
	flagConfig   string
	flagChartDir string
	flagFPS      int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mania",
	Short: "Terminal rhythm game - hit the notes as they scroll",
	Long: `mania is a vertical-scrolling rhythm game played in your terminal.

Notes scroll toward a receptor line; press the lane keys as they arrive.
Runs are judged on microsecond timing, scored, and saved together with a
replay log that reproduces the run exactly.

Available commands:
  play     - Play a chart file directly
  menu     - Interactive chart picker
  replay   - Watch a recorded run
  verify   - Check a recorded run against its replay log
  scores   - View saved runs
  charts   - List chart files
  serve    - Start SSH server for remote play

Examples:
  mania charts
  mania play charts/demo.yaml
  mania play charts/demo.yaml --rate 1.2 --practice
  mania menu
  mania replay 3
  mania serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.mania/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagChartDir, "charts", "charts", "Chart directory")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Render frame rate (never affects judging)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(chartsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadGameConfig loads the config honoring the global --config flag and an
// optional difficulty preset. The render frame rate rides along because
// every caller about to run a TUI needs it applied.
func loadGameConfig(preset string) (config.Config, error) {
	tui.SetRenderFPS(flagFPS)
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if preset != "" {
		config.ApplyPreset(&cfg, config.DifficultyPreset(preset))
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
