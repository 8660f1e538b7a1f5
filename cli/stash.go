package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stashCmd = &cobra.Command{
	Use:   "stash",
	Short: "Set the working folder's unsaved state aside",
	Long: `Stash snapshots the working folder into a single slot without adding
to history. Stashing again overwrites the slot.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.Stash(); err != nil {
			return err
		}
		fmt.Println("Working state stashed")
		return nil
	},
}

var stashPopCmd = &cobra.Command{
	Use:   "pop",
	Short: "Restore the stashed working state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		restored, err := eng.PopStash()
		if err != nil {
			return err
		}
		if !restored {
			fmt.Println("Nothing stashed")
			return nil
		}
		fmt.Println("Stashed working state restored")
		return nil
	},
}

var stashShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Report whether a stashed state exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		stashed, err := eng.HasStash()
		if err != nil {
			return err
		}
		if stashed {
			fmt.Println("A stashed working state is waiting")
		} else {
			fmt.Println("Nothing stashed")
		}
		return nil
	},
}
