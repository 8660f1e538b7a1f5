package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/muninn-vcs/muninn/internal/config"
	"github.com/muninn-vcs/muninn/internal/engine"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or set the identity recorded on snapshots",
	Long: `Config reads or writes the author identity snapshots are recorded
with. Keys: user.name, user.email. Without arguments the effective
identity is printed; with a key and value the setting is stored in the
project and overrides the global ~/.muninnconfig.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		storeDir := filepath.Join(dir, engine.StoreDirName)
		if _, err := os.Stat(storeDir); err != nil {
			return fmt.Errorf("%w: %s", engine.ErrNotRepository, dir)
		}

		cfg, err := config.Load(storeDir)
		if err != nil {
			return err
		}

		switch len(args) {
		case 0:
			fmt.Println(cfg.Author())
			return nil

		case 1:
			switch args[0] {
			case "user.name":
				fmt.Println(cfg.User.Name)
			case "user.email":
				fmt.Println(cfg.User.Email)
			default:
				return fmt.Errorf("unknown config key %q", args[0])
			}
			return nil

		default:
			switch args[0] {
			case "user.name":
				cfg.User.Name = args[1]
			case "user.email":
				cfg.User.Email = args[1]
			default:
				return fmt.Errorf("unknown config key %q", args[0])
			}
			if err := config.SaveRepo(storeDir, cfg); err != nil {
				return err
			}
			fmt.Printf("Set %s\n", args[0])
			return nil
		}
	},
}
