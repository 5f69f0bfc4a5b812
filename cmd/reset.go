package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all learner data",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if !force {
			fmt.Printf("This would delete %s. Re-run with --force to confirm.\n", cfg.DBPath)
			return nil
		}

		if err := os.Remove(cfg.DBPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Println("No learner data to delete.")
				return nil
			}
			return fmt.Errorf("delete database: %w", err)
		}
		// WAL sidecar files, if present.
		os.Remove(cfg.DBPath + "-wal")
		os.Remove(cfg.DBPath + "-shm")

		fmt.Printf("Deleted %s.\n", cfg.DBPath)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("force", false, "Actually delete the database")
}
