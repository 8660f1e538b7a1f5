package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muninn-vcs/muninn/internal/colors"
	"github.com/muninn-vcs/muninn/internal/objects"
)

var gotoCmd = &cobra.Command{
	Use:   "goto <snapshot>",
	Short: "Move the working folder to a snapshot",
	Long: `Goto rewinds or fast-forwards the position to a snapshot and
overwrites the working folder with its content. Rewinding never loses
history: saving new work afterwards forks a fresh timeline and the old
future stays on the original one.`,
	Args: cobra.ExactArgs(1),
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

		if err := eng.Navigate(id); err != nil {
			return err
		}

		fmt.Printf("Now at %s\n", colors.SnapshotID(id.Short()))
		rewound, err := eng.IsRewound()
		if err != nil {
			return err
		}
		if rewound {
			fmt.Println(colors.Yellow("Rewound: the newer snapshots are kept; saving forks a new timeline"))
		}
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <snapshot>",
	Short: "Overwrite the working folder with a snapshot's content only",
	Long: `Checkout writes a snapshot's content into the working folder without
moving the position or recording rewind state. Combine with stash to
peek at an old snapshot and come back.`,
	Args: cobra.ExactArgs(1),
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

		if err := eng.Checkout(id); err != nil {
			return err
		}
		fmt.Printf("Working folder now shows %s\n", colors.SnapshotID(id.Short()))
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <snapshot>",
	Short: "Bring back a snapshot's content as a new save",
	Args:  cobra.ExactArgs(1),
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

		newID, err := eng.Restore(id)
		if err != nil {
			return err
		}
		fmt.Printf("Restored %s as snapshot %s\n",
			colors.SnapshotID(id.Short()), colors.SnapshotID(newID.Short()))
		return nil
	},
}
