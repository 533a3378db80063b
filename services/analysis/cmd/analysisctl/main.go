package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"melify/internal/util"
	"melify/pkg/domain"
	"melify/pkg/store"
	"melify/pkg/workflow"
	"melify/services/analysis/internal/app"
	"melify/services/analysis/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "analysisctl",
	Short:         "analysisctl - operate the Melify journal analysis service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the built-in recommendation catalog",
	RunE:  runSeed,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one journal synchronously and print the result",
	RunE:  runAnalyze,
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Queue one journal for background analysis",
	RunE:  runEnqueue,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Queue every journal still unanalyzed after the grace period",
	RunE:  runSweep,
}

var (
	configPath string
	journalID  string
	userID     string
	dryRun     bool
	content    string
	mood       string
	moodRating int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.ConfigPath, "Path to config.yaml")
	for _, cmd := range []*cobra.Command{analyzeCmd, enqueueCmd} {
		cmd.Flags().StringVar(&journalID, "journal", "", "Journal ID")
		cmd.Flags().StringVar(&userID, "user", "", "Owner user ID")
	}
	analyzeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Analyze --content in memory without a database or Redis")
	analyzeCmd.Flags().StringVar(&content, "content", "", "Journal text for --dry-run")
	analyzeCmd.Flags().StringVar(&mood, "mood", string(domain.MoodNeutral), "Mood for --dry-run")
	analyzeCmd.Flags().IntVar(&moodRating, "rating", 5, "Mood rating 1-10 for --dry-run")
	rootCmd.AddCommand(seedCmd, analyzeCmd, enqueueCmd, sweepCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openApp loads config and builds an App without queue consumers. A
// standalone App needs no Redis and skips the journal lock.
func openApp(dataStore store.Store, standalone bool) (*app.App, error) {
	load := config.Load
	if standalone {
		load = config.LoadStandalone
	}
	cfg, err := load(configPath)
	if err != nil {
		return nil, err
	}
	logger := util.InitLogger(cfg.LogLevel)
	return app.New(app.Config{
		DatabaseURL:        cfg.DatabaseURL,
		Store:              dataStore,
		StoreType:          cfg.Store,
		RedisAddr:          cfg.RedisAddr,
		RedisPassword:      cfg.RedisPassword,
		GenerationProvider: cfg.GenerationProvider,
		GenerationAPIKey:   cfg.GenerationAPIKey,
		GenerationModel:    cfg.GenerationModel,
		GenerationBaseURL:  cfg.GenerationBaseURL,
		GenerationTimeout:  time.Duration(cfg.GenerationTimeoutSeconds) * time.Second,
		Strategy:           cfg.Strategy,
		QueueName:          cfg.QueueName,
		QueueGroup:         cfg.QueueGroup,
		QueueMaxRetries:    cfg.QueueMaxRetries,
		LockTTL:            time.Duration(cfg.LockTTLSeconds) * time.Second,
		SweepGrace:         time.Duration(cfg.SweepGraceMinutes) * time.Minute,
		SweepBatchSize:     cfg.SweepBatchSize,
		DisableWorkers:     true,
		Standalone:         standalone,
		Logger:             logger,
	})
}

func runSeed(cmd *cobra.Command, _ []string) error {
	a, err := openApp(nil, false)
	if err != nil {
		return err
	}
	defer a.Close()
	n, err := a.SeedCatalog(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d catalog items\n", n)
	return nil
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if dryRun {
		return runDryRun(cmd)
	}
	if err := requireIDs(); err != nil {
		return err
	}
	a, err := openApp(nil, false)
	if err != nil {
		return err
	}
	defer a.Close()
	res, err := a.Analyze(cmd.Context(), journalID, userID)
	var perr *workflow.PersistenceError
	if errors.As(err, &perr) && res != nil {
		_ = printJSON(cmd.OutOrStdout(), res)
		return err
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

// runDryRun analyzes --content against a throwaway memory store. It needs
// no database and no Redis; only the generation provider is contacted.
func runDryRun(cmd *cobra.Command) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("--content is required with --dry-run")
	}
	m := domain.Mood(strings.ToLower(strings.TrimSpace(mood)))
	if !m.Valid() {
		return fmt.Errorf("unknown mood %q", mood)
	}
	if moodRating < 1 || moodRating > 10 {
		return fmt.Errorf("--rating must be between 1 and 10, got %d", moodRating)
	}
	mem := store.NewMemoryStore()
	a, err := openApp(mem, true)
	if err != nil {
		return err
	}
	defer a.Close()
	if _, err := a.SeedCatalog(cmd.Context()); err != nil {
		return err
	}
	entry := domain.JournalEntry{
		ID:         util.NewID(),
		UserID:     "dry-run",
		Content:    content,
		Mood:       m,
		MoodRating: moodRating,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := mem.SaveJournal(cmd.Context(), entry); err != nil {
		return err
	}
	res, err := a.Analyze(cmd.Context(), entry.ID, entry.UserID)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runEnqueue(cmd *cobra.Command, _ []string) error {
	if err := requireIDs(); err != nil {
		return err
	}
	a, err := openApp(nil, false)
	if err != nil {
		return err
	}
	defer a.Close()
	job, err := a.Enqueue(cmd.Context(), journalID, userID)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), job)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	a, err := openApp(nil, false)
	if err != nil {
		return err
	}
	defer a.Close()
	n, err := a.Sweep(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "enqueued %d journals\n", n)
	return nil
}

func requireIDs() error {
	if strings.TrimSpace(journalID) == "" || strings.TrimSpace(userID) == "" {
		return errors.New("--journal and --user are required")
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
