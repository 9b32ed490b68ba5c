package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-mania/internal/chart"
)

var chartsCmd = &cobra.Command{
	Use:   "charts [dir]",
	Short: "List chart files",
	Long: `Shows every playable chart in the chart directory with its
metadata. The directory defaults to the global --charts flag.

Examples:
  mania charts
  mania charts ./songs`,
	Args: cobra.MaximumNArgs(1),
	Run:  runChartsCmd,
}

func runChartsCmd(cmd *cobra.Command, args []string) {
	dir := flagChartDir
	if len(args) == 1 {
		dir = args[0]
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning %s: %v\n", dir, err)
		os.Exit(1)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		fmt.Printf("No charts found in %s.\n", dir)
		return
	}

	fmt.Printf("Charts in %s:\n", dir)
	fmt.Println()

	// Calculate column width
	maxNameLen := 4 // "File" header
	for _, p := range paths {
		if n := len(filepath.Base(p)); n > maxNameLen {
			maxNameLen = n
		}
	}

	// Print header
	fmt.Printf("  %-*s  %-5s  %-6s  %-8s  %s\n", maxNameLen, "File", "Keys", "Notes", "Length", "Title")
	fmt.Printf("  %-*s  %-5s  %-6s  %-8s  %s\n", maxNameLen, "----", "----", "-----", "------", "-----")

	// Print charts; unparseable files are flagged instead of hidden.
	for _, p := range paths {
		name := filepath.Base(p)
		c, err := chart.LoadFile(p)
		if err != nil {
			fmt.Printf("  %-*s  (broken: %v)\n", maxNameLen, name, err)
			continue
		}
		meta := c.Meta()
		fmt.Printf("  %-*s  %-5d  %-6d  %-8s  %s - %s\n",
			maxNameLen, name, meta.Keys, c.NoteCount(), c.LastNoteEnd(), meta.Artist, meta.Title)
	}

	fmt.Println()
	fmt.Println("Run 'mania play <file>' to play a chart.")
}
