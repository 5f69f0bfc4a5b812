package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the next recommended topic and difficulty",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cfg, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close(cmd.Context())

		dec, err := e.NextTopic(cmd.Context(), cfg.Student.ID, cfg.Student.Grade)
		if err != nil {
			return err
		}

		topic, err := e.Curriculum().Topic(dec.Topic)
		if err != nil {
			return err
		}

		fmt.Printf("Student:     %s (grade %d)\n", cfg.Student.ID, cfg.Student.Grade)
		fmt.Printf("Next topic:  %s — %s\n", topic.Name, topic.Description)
		fmt.Printf("Difficulty:  %d of 5\n", dec.Difficulty)
		fmt.Printf("Why:         %s\n", dec.Rationale)
		return nil
	},
}
