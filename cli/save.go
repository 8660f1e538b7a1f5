package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muninn-vcs/muninn/internal/colors"
)

var (
	saveMessage   string
	saveForkLabel string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Snapshot the folder's current contents",
	Long: `Save captures a full snapshot of the folder's visible contents.
On a timeline tip the snapshot is appended; after a rewind it starts a
new timeline and the old future is kept intact.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		message := saveMessage
		if message == "" {
			message = "Snapshot"
		}

		wasRewound, err := eng.IsRewound()
		if err != nil {
			return err
		}

		id, err := eng.Commit(message, saveForkLabel)
		if err != nil {
			return err
		}

		fmt.Printf("Saved snapshot %s\n", colors.SnapshotID(id.Short()))
		if wasRewound {
			timelines, err := eng.ListTimelines()
			if err != nil {
				return err
			}
			for _, tl := range timelines {
				if tl.IsActive {
					fmt.Printf("New direction preserved on timeline %s\n", colors.TimelineName(tl.Label))
				}
			}
		}
		return nil
	},
}

func init() {
	saveCmd.Flags().StringVarP(&saveMessage, "message", "m", "", "snapshot message")
	saveCmd.Flags().StringVar(&saveForkLabel, "fork-label", "", "label for the new timeline if this save forks")
}
