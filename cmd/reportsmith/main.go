package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/reportsmith/internal/config"
	"github.com/amosWeiskopf/reportsmith/internal/logger"
	"github.com/amosWeiskopf/reportsmith/pkg/history"
	"github.com/amosWeiskopf/reportsmith/pkg/report"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app holds what every command shares once the config is loaded
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	store  history.Store
	policy report.DeletePolicy
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "reportsmith",
	Short: "ReportSmith - SEO performance reports from Search Console exports",
	Long: `ReportSmith turns Google Search Console exports (xlsx, csv or pdf) into
client reports: it reconciles the periods, computes the year over year
changes, keeps a report history and exports HTML, Markdown, JSON or PDF.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log, err := logger.New(cfg.Logging)
		if err != nil {
			return err
		}
		for _, w := range cfg.Warnings() {
			log.Warn(w)
		}

		policy, err := report.ParseDeletePolicy(cfg.History.DeletePolicy)
		if err != nil {
			return err
		}
		store, err := history.Open(cmd.Context(), cfg.History, log)
		if err != nil {
			return fmt.Errorf("failed to open report history: %w", err)
		}

		current = &app{cfg: cfg, log: log, store: store, policy: policy}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil {
			return nil
		}
		return current.store.Close()
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(sectionCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(exportCmd)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
