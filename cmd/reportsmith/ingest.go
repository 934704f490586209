package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/reportsmith/pkg/agent"
	"github.com/amosWeiskopf/reportsmith/pkg/analyzer"
	"github.com/amosWeiskopf/reportsmith/pkg/ingest"
	"github.com/amosWeiskopf/reportsmith/pkg/reconciler"
	"github.com/amosWeiskopf/reportsmith/pkg/report"
	"github.com/amosWeiskopf/reportsmith/pkg/reporter"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Extract and reconcile Search Console exports",
	Long: `Reads every file concurrently (xlsx, csv or pdf), reconciles them into a
current and a previous-year period and prints the analysis. With --report the
result is bound into a stored report.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		reportID, _ := cmd.Flags().GetString("report")
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		cfg, log := current.cfg, current.log

		var target *reconciler.DateRange
		if start != "" || end != "" {
			if start == "" || end == "" {
				return errors.New("--start and --end go together")
			}
			r, err := reconciler.NewDateRange(start, end)
			if err != nil {
				return fmt.Errorf("invalid period: %w", err)
			}
			target = &r
		}

		var fx agent.FieldExtractor
		completer, err := agent.NewGemini(ctx, cfg.Agent)
		switch {
		case err == nil:
			fx = agent.New(completer, cfg.Ingest.TopN, log)
		case errors.Is(err, agent.ErrNoAPIKey):
			log.Debug("No Gemini key, PDF files will be rejected")
		default:
			return err
		}

		sources := make([]ingest.Source, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			sources = append(sources, ingest.Source{Name: filepath.Base(path), Data: data})
		}

		res, err := ingest.New(cfg.Ingest, fx, log).Run(ctx, sources, target)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}

		insights, err := analyzer.New().Analyze(res)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		if output != "" {
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}
			log.WithField("path", output).Info("Reconciled result saved")
		}

		if reportID != "" {
			doc, err := current.store.Get(ctx, reportID)
			if err != nil {
				return err
			}
			d := report.Wrap(doc, report.WithDeletePolicy(current.policy))
			if err := report.BindReconciled(d, res, cfg.Ingest.SampleSize); err != nil {
				return err
			}
			if err := report.SetAnalysis(d, insights.Paragraph); err != nil {
				return err
			}
			if err := current.store.Save(ctx, doc); err != nil {
				return err
			}
			insights.ClientName = doc.ClientName
			log.WithField("report", doc.ID).Info("Report updated from ingested files")
		}

		f, err := reporter.ParseFormat(format)
		if err != nil {
			return err
		}
		r, err := reporter.New()
		if err != nil {
			return err
		}
		out, err := r.RenderInsights(insights, f)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("start", "", "Start of the analysis period (dd/mm/yyyy)")
	ingestCmd.Flags().String("end", "", "End of the analysis period (dd/mm/yyyy)")
	ingestCmd.Flags().String("report", "", "Bind the result into this stored report")
	ingestCmd.Flags().String("output", "", "Write the reconciled result as JSON to this file")
	ingestCmd.Flags().String("format", "markdown", "Analysis output format (markdown, json)")
}
