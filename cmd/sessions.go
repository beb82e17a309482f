package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect stored interview sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := context.Background()
		stores, err := openSessionStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer stores.Close()

		recs, err := stores.Repo.ListByOwner(ctx, owner, limit)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-24s  %-6s  %-9s  %5s  %6s  %s\n",
			"ID", "Created", "Role", "Level", "Status", "Q", "Avg", "Readiness")
		fmt.Println(strings.Repeat("─", 128))
		for _, r := range recs {
			avg, readiness := "-", "-"
			if r.Status == "COMPLETED" {
				avg = fmt.Sprintf("%.2f", r.AverageScore)
				readiness = r.ReadinessLabel
				if r.ConfidenceScore != nil {
					readiness = fmt.Sprintf("%s (%.2f)", r.ReadinessLabel, *r.ConfidenceScore)
				}
			}
			fmt.Printf("%-36s  %-19s  %-24s  %-6s  %-9s  %2d/%-2d  %6s  %s\n",
				r.ID,
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(r.Role, 24),
				r.Difficulty,
				r.Status,
				r.QuestionCount, r.MaxQuestions,
				avg,
				readiness,
			)
		}
		return nil
	},
}

var sessionsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show every question, answer and score of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := context.Background()
		stores, err := openSessionStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer stores.Close()

		r, err := stores.Repo.Get(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("session %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		fmt.Printf("ID:         %s\n", r.ID)
		fmt.Printf("Owner:      %s\n", r.OwnerID)
		fmt.Printf("Role:       %s\n", r.Role)
		fmt.Printf("Difficulty: %s\n", r.Difficulty)
		fmt.Printf("Status:     %s\n", r.Status)
		fmt.Printf("Questions:  %d/%d\n", r.QuestionCount, r.MaxQuestions)
		fmt.Printf("Created:    %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		if r.CompletedAt != nil {
			fmt.Printf("Completed:  %s\n", r.CompletedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("Total:      %.2f\n", r.TotalScore)
			fmt.Printf("Average:    %.2f\n", r.AverageScore)
			if r.ConfidenceScore != nil {
				fmt.Printf("Readiness:  %s (confidence %.2f)\n", r.ReadinessLabel, *r.ConfidenceScore)
			}
		}

		sep := strings.Repeat("─", 60)
		for i, q := range r.Questions {
			fmt.Println()
			fmt.Println(sep)
			fmt.Printf("Q%d [%s]  %s\n", i+1, q.Difficulty, q.QuestionText)
			fmt.Println(sep)
			if q.Score == nil {
				fmt.Println("(not answered)")
				continue
			}
			fmt.Printf("Answer:    %s\n", q.UserAnswer)
			fmt.Printf("Score:     %.1f\n", *q.Score)
			fmt.Printf("Mistakes:  %s\n", q.Critique)
			fmt.Printf("Improved:  %s\n", q.ImprovedAnswer)
		}
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().StringP("owner", "o", "", "Owner (token subject) whose sessions to list")
	sessionsListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	_ = sessionsListCmd.MarkFlagRequired("owner")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsViewCmd)
}
