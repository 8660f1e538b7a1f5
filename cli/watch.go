package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/muninn-vcs/muninn/internal/colors"
	"github.com/muninn-vcs/muninn/internal/engine"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Auto-save a snapshot whenever the folder changes",
	Long: `Watch observes the project folder and saves a snapshot after each
burst of changes settles. One snapshot operation runs at a time; events
arriving during a save are folded into the next one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := addWatchDirs(watcher, dir); err != nil {
			return err
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		fmt.Println("Watching for changes; Ctrl-C to stop")

		var timer *time.Timer
		var pending <-chan time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if isHidden(dir, event.Name) {
					continue
				}
				// New subdirectories need their own watch.
				if event.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = addWatchDirs(watcher, event.Name)
					}
				}
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
				} else {
					timer.Reset(watchDebounce)
				}
				pending = timer.C

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintln(os.Stderr, colors.ErrorText("watch error: "+err.Error()))

			case <-pending:
				pending = nil
				if err := autoSave(dir); err != nil {
					fmt.Fprintln(os.Stderr, colors.ErrorText("auto-save failed: "+err.Error()))
				}

			case <-stop:
				return nil
			}
		}
	},
}

// autoSave opens the engine for one serialized snapshot operation.
func autoSave(dir string) error {
	eng, err := engine.Open(dir)
	if err != nil {
		return err
	}
	defer eng.Close()

	dirty, err := eng.HasChanges()
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}

	id, err := eng.Commit("Auto-save", "")
	if err != nil {
		return err
	}
	fmt.Printf("Auto-saved snapshot %s\n", colors.SnapshotID(id.Short()))
	return nil
}

// addWatchDirs registers root and every visible subdirectory.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any path element under root is dot-prefixed.
func isHidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before auto-saving")
}
