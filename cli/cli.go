package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muninn-vcs/muninn/internal/engine"
)

var rootCmd = &cobra.Command{
	Use:   "muninn",
	Short: "Muninn keeps branching version history for a project folder",
	Long: `Muninn gives a folder of documents, sketches and other artifacts
transparent version history. Every save is a full snapshot; rewinding and
committing new work forks a separate timeline, so nothing is ever lost.`,
	SilenceUsage: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize version history for the current folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		eng, err := engine.Init(dir)
		if err != nil {
			return err
		}
		defer eng.Close()
		fmt.Println("Initialized muninn project in", dir)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)

	// Snapshot and history commands
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(configCmd)

	// Navigation commands
	rootCmd.AddCommand(gotoCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(restoreCmd)

	// Timeline management commands
	rootCmd.AddCommand(timelineCmd)
	timelineCmd.AddCommand(createTimelineCmd, listTimelineCmd, switchTimelineCmd, removeTimelineCmd)

	// Stash commands
	rootCmd.AddCommand(stashCmd)
	stashCmd.AddCommand(stashPopCmd, stashShowCmd)

	// Auto-snapshot watcher
	rootCmd.AddCommand(watchCmd)
}

// openEngine opens the engine for the current working directory.
func openEngine() (*engine.Engine, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return engine.Open(dir)
}
