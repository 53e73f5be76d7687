// Package main provides examctl, which validates and seeds question banks.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/VanAubrey/aws-cert-review/internal/bank"
	"github.com/VanAubrey/aws-cert-review/internal/config"
	"github.com/VanAubrey/aws-cert-review/internal/database"
	"github.com/VanAubrey/aws-cert-review/internal/logger"
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/repository"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "examctl",
		Short:        "Manage certification question banks",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newSeedCmd())
	return rootCmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <bank.json>...",
		Short: "Check bank files without touching the database",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidateCmd,
	}
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		f, err := loadValid(path)
		if err != nil {
			failed++
			printIssues(cmd, path, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%s, %d questions)\n", path, f.ExamCode, len(f.Questions))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d bank files are invalid", failed, len(args))
	}
	return nil
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <bank.json>...",
		Short: "Insert bank files, skipping exam codes that already exist",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSeedCmd,
	}
}

func runSeedCmd(cmd *cobra.Command, args []string) error {
	// Every file must pass before anything is written.
	banks := make([]*bank.File, 0, len(args))
	for _, path := range args {
		f, err := loadValid(path)
		if err != nil {
			printIssues(cmd, path, err)
			return fmt.Errorf("refusing to seed: %s is invalid", path)
		}
		banks = append(banks, f)
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return seed(ctx, repository.NewExamRepository(pool), banks, log)
}

// examCreator is the slice of the exam store seeding needs.
type examCreator interface {
	Create(ctx context.Context, exam *model.Exam) error
}

func seed(ctx context.Context, exams examCreator, banks []*bank.File, log zerolog.Logger) error {
	for _, f := range banks {
		exam := f.ToExam()
		err := exams.Create(ctx, exam)
		switch {
		case errors.Is(err, repository.ErrConflict):
			log.Warn().Str("code", f.ExamCode).Msg("Exam already exists, skipping")
		case err != nil:
			return fmt.Errorf("seed %s: %w", f.ExamCode, err)
		default:
			log.Info().
				Str("code", exam.Code).
				Str("id", exam.ID.String()).
				Int("questions", len(exam.Questions)).
				Msg("Exam seeded")
		}
	}
	return nil
}

func loadValid(path string) (*bank.File, error) {
	f, err := bank.Load(path)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func printIssues(cmd *cobra.Command, path string, err error) {
	out := cmd.ErrOrStderr()
	var issues bank.Issues
	if !errors.As(err, &issues) {
		fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
		return
	}
	fmt.Fprintf(out, "FAIL %s\n", path)
	for _, issue := range issues {
		fmt.Fprintf(out, "     - %s\n", issue)
	}
}
