package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-mania/internal/chart"
	"github.com/vovakirdan/tui-mania/internal/judge"
	"github.com/vovakirdan/tui-mania/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [chart]",
	Short: "Show saved runs",
	Long: `Display the top 10 runs for the specified chart, or the most
recent runs across all charts when no chart is given.

Examples:
  mania scores
  mania scores charts/demo.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScoresCmd,
}

func runScoresCmd(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening runs database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var runs []storage.RunRecord
	header := "Recent runs"

	if len(args) == 1 {
		c, err := chart.LoadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		header = fmt.Sprintf("Best runs - %s", c.Meta().Title)

		runs, err = store.TopRuns(c.Hash(), 10)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
			os.Exit(1)
		}
	} else {
		runs, err = store.RecentRuns(10)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println(header)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'mania play <chart>' to set the first score!")
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-10s  %-7s  %-6s  %-5s  %-5s  %-20s  %s\n",
		"ID", "Score", "Acc", "Combo", "Rate", "Miss", "Title", "Date")
	fmt.Printf("  %-4s  %-10s  %-7s  %-6s  %-5s  %-5s  %-20s  %s\n",
		"--", "-----", "---", "-----", "----", "----", "-----", "----")

	// Print runs
	for _, r := range runs {
		title := r.Title
		if len(title) > 20 {
			title = title[:19] + "."
		}
		fmt.Printf("  %-4d  %-10d  %-6.2f%%  %-6d  %-5.2f  %-5d  %-20s  %s\n",
			r.ID, r.Score, r.Accuracy, r.MaxCombo, r.Rate,
			r.TierCounts[judge.Miss], title,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if len(args) == 1 {
		fmt.Println()
		fmt.Println("Watch a run with 'mania replay <id>'.")
	}
}
