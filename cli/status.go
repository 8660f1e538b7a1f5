package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muninn-vcs/muninn/internal/colors"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current position and whether there is unsaved work",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		timelines, err := eng.ListTimelines()
		if err != nil {
			return err
		}
		for _, tl := range timelines {
			if tl.IsActive {
				fmt.Printf("On timeline %s (%d snapshots)\n",
					colors.TimelineName(tl.Label), tl.CommitCount)
			}
		}

		rewound, err := eng.IsRewound()
		if err != nil {
			return err
		}
		if rewound {
			fmt.Println(colors.Yellow("Rewound: saving now will start a new timeline"))
		}

		dirty, err := eng.HasChanges()
		if err != nil {
			return err
		}
		if dirty {
			fmt.Println("Unsaved changes present")
		} else {
			fmt.Println("Everything saved")
		}

		stashed, err := eng.HasStash()
		if err != nil {
			return err
		}
		if stashed {
			fmt.Println("A stashed working state is waiting (muninn stash pop)")
		}
		return nil
	},
}
