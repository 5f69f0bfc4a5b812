package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opengov/earlymath/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mastery and LLM usage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()

		rows, err := s.MasteryRepo().LoadStudent(ctx, cfg.Student.ID)
		if err != nil {
			return fmt.Errorf("load mastery: %w", err)
		}

		fmt.Printf("Mastery for %s\n", cfg.Student.ID)
		if len(rows) == 0 {
			fmt.Println("No practice recorded yet.")
		} else {
			fmt.Printf("%-16s  %-8s  %-10s  %-8s  %-10s  %s\n",
				"Topic", "Estimate", "Confidence", "Attempts", "Difficulty", "Last practiced")
			fmt.Println(strings.Repeat("─", 80))
			for _, row := range rows {
				fmt.Printf("%-16s  %-8.2f  %-10.2f  %-8d  %-10d  %s\n",
					row.SkillID, row.Estimate, row.Confidence,
					row.AttemptCount, row.Difficulty,
					row.LastUpdated.Local().Format("2006-01-02 15:04"),
				)
			}
		}

		usage, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("aggregate LLM usage: %w", err)
		}
		if len(usage) == 0 {
			return nil
		}

		fmt.Printf("\nLLM usage by purpose\n")
		fmt.Printf("%-16s  %-6s  %-10s  %-10s  %s\n", "Purpose", "Calls", "In tokens", "Out tokens", "Avg ms")
		fmt.Println(strings.Repeat("─", 60))
		for _, u := range usage {
			fmt.Printf("%-16s  %-6d  %-10d  %-10d  %d\n",
				u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		}
		return nil
	},
}
