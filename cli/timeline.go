package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muninn-vcs/muninn/internal/colors"
	"github.com/muninn-vcs/muninn/internal/objects"
)

var timelineCmd = &cobra.Command{
	Use:     "timeline",
	Aliases: []string{"tl"},
	Short:   "Manage timelines",
	Long:    `Create, list, switch and remove timelines.`,
}

var createFrom string

var createTimelineCmd = &cobra.Command{
	Use:   "create <label>",
	Short: "Create a new timeline from a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		var from objects.ID
		if createFrom != "" {
			from, err = objects.ParseID(createFrom)
			if err != nil {
				return err
			}
		} else {
			entries, err := eng.ListCommits()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no snapshots yet; save one before creating a timeline")
			}
			from = entries[0].ID
		}

		slug, err := eng.CreateTimeline(from, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created timeline %s (%s) at %s\n",
			colors.TimelineName(args[0]), slug, colors.SnapshotID(from.Short()))
		return nil
	},
}

var listTimelineCmd = &cobra.Command{
	Use:   "list",
	Short: "List all timelines",
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
			marker := "  "
			if tl.IsActive {
				marker = colors.HeadMarker("* ")
			}
			fmt.Printf("%s%s  %s  %d snapshots\n",
				marker, colors.TimelineName(tl.Slug), tl.Label, tl.CommitCount)
		}
		return nil
	},
}

var switchTimelineCmd = &cobra.Command{
	Use:   "switch <slug>",
	Short: "Switch to a timeline's latest snapshot",
	Long: `Switch moves the position to the timeline's tip and overwrites the
working folder with its content. Unsaved changes are discarded; stash
first if you want to keep them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.SwitchTimeline(args[0]); err != nil {
			return err
		}
		fmt.Printf("Switched to timeline %s\n", colors.TimelineName(args[0]))
		return nil
	},
}

var removeTimelineCmd = &cobra.Command{
	Use:     "remove <slug>",
	Aliases: []string{"rm"},
	Short:   "Delete a timeline",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.DeleteTimeline(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed timeline %s\n", args[0])
		return nil
	},
}

func init() {
	createTimelineCmd.Flags().StringVar(&createFrom, "from", "", "snapshot id the timeline starts at (default: current)")
}
