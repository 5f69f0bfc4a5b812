package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opengov/earlymath/internal/tutor"
)

var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Start an interactive tutoring session",
	Long: "Open a conversational tutoring session on the planner's current topic.\n" +
		"Type your questions at the prompt; 'bye' (or EOF) ends the session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cfg, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close(cmd.Context())

		s, err := e.StartTutoring(cmd.Context(), cfg.Student.ID, cfg.Student.Grade)
		if err != nil {
			return err
		}

		fmt.Printf("Session %s on %s (difficulty %d)\n\n", s.ID, s.Topic, s.Difficulty)
		fmt.Println(s.Greeting)

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Print("\n> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "bye" || line == "exit" || line == "quit" {
				break
			}

			reply, err := e.AskTutor(cmd.Context(), s.ID, line)
			if err != nil {
				var budget *tutor.BudgetExhaustedError
				var closed *tutor.SessionClosedError
				switch {
				case errors.As(err, &budget):
					fmt.Printf("\nThat's all for today: %v\n", budget)
					return e.EndTutoring(cmd.Context(), s.ID)
				case errors.As(err, &closed):
					fmt.Printf("\nSession over: %v\n", closed)
					return nil
				default:
					return err
				}
			}
			fmt.Printf("\n%s\n", reply)
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		fmt.Println("\nGoodbye! Keep practicing.")
		return e.EndTutoring(cmd.Context(), s.ID)
	},
}
