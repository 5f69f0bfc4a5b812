package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var problemCmd = &cobra.Command{
	Use:   "problem",
	Short: "Generate practice problems",
	Long: "Generate deterministic practice problems. Without --topic the planner\n" +
		"picks the topic and difficulty from the student's mastery.",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		difficulty, _ := cmd.Flags().GetInt("difficulty")
		seed, _ := cmd.Flags().GetInt64("seed")
		count, _ := cmd.Flags().GetInt("count")
		showAnswer, _ := cmd.Flags().GetBool("show-answer")

		e, cfg, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close(cmd.Context())

		if topic == "" {
			dec, err := e.NextTopic(cmd.Context(), cfg.Student.ID, cfg.Student.Grade)
			if err != nil {
				return err
			}
			topic = dec.Topic
			if !cmd.Flags().Changed("difficulty") {
				difficulty = dec.Difficulty
			}
		}
		if !cmd.Flags().Changed("seed") {
			seed = time.Now().UnixNano()
		}

		for i := range count {
			p, err := e.GenerateProblem(topic, difficulty, cfg.Student.Grade, seed+int64(i))
			if err != nil {
				return err
			}

			fmt.Printf("[%s, difficulty %d, seed %d]\n", p.Topic, p.Difficulty, p.Seed)
			fmt.Println(p.Question)
			if showAnswer {
				fmt.Printf("Answer: %s\n", p.Answer)
				for _, step := range p.SolutionSteps {
					fmt.Printf("  %s\n", step)
				}
			} else {
				fmt.Printf("Check with: earlymath check --topic %s --difficulty %d --seed %d <answer>\n",
					p.Topic, p.Difficulty, p.Seed)
			}
			if i < count-1 {
				fmt.Println()
			}
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <answer>",
	Short: "Check an answer and update mastery",
	Long: "Re-generate the problem from its topic, difficulty, and seed, grade the\n" +
		"submitted answer, and fold the result into the student's mastery.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		difficulty, _ := cmd.Flags().GetInt("difficulty")
		seed, _ := cmd.Flags().GetInt64("seed")

		e, cfg, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close(cmd.Context())

		p, err := e.GenerateProblem(topic, difficulty, cfg.Student.Grade, seed)
		if err != nil {
			return err
		}

		result, sm, err := e.CheckAnswer(cmd.Context(), cfg.Student.ID, p, args[0])
		if err != nil {
			return err
		}

		if result.Correct {
			fmt.Println("Correct!")
		} else if result.PartialCredit > 0 {
			fmt.Printf("Not quite — partial credit %.0f%%.\n", result.PartialCredit*100)
		} else {
			fmt.Println("Not correct.")
		}
		if result.Feedback != "" {
			fmt.Println(result.Feedback)
		}
		fmt.Printf("Mastery on %s: %.2f (confidence %.2f, %d attempts)\n",
			p.Topic, sm.Estimate, sm.Confidence, sm.AttemptCount)
		return nil
	},
}

func init() {
	problemCmd.Flags().String("topic", "", "Topic ID (default: planner's choice)")
	problemCmd.Flags().Int("difficulty", 1, "Difficulty 1-5 (default: planner's choice)")
	problemCmd.Flags().Int64("seed", 0, "Generation seed (default: current time)")
	problemCmd.Flags().Int("count", 1, "Number of problems")
	problemCmd.Flags().Bool("show-answer", false, "Print the answer and worked solution")

	checkCmd.Flags().String("topic", "", "Topic ID of the problem")
	checkCmd.Flags().Int("difficulty", 1, "Difficulty of the problem")
	checkCmd.Flags().Int64("seed", 0, "Seed of the problem")
	checkCmd.MarkFlagRequired("topic")
	checkCmd.MarkFlagRequired("seed")
}
