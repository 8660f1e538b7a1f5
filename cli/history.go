package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muninn-vcs/muninn/internal/colors"
	"github.com/muninn-vcs/muninn/internal/objects"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List snapshots on the current timeline, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		entries, err := eng.ListCommits()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No snapshots yet")
			return nil
		}

		for _, entry := range entries {
			fmt.Printf("%s  %s  %s\n",
				colors.SnapshotID(entry.ID.Short()),
				colors.Dim(entry.Time.Local().Format("2006-01-02 15:04:05")),
				entry.Message)
		}
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <snapshot> <path>",
	Short: "Print a file's content as of a snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := objects.ParseID(args[0])
		if err != nil {
			return err
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		content, err := eng.ReadFileAt(id, args[1])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(content)
		return err
	},
}
