package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/reportsmith/pkg/reporter"
	"github.com/amosWeiskopf/reportsmith/pkg/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate ID",
	Short: "Store an English or Spanish copy of a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		langFlag, _ := cmd.Flags().GetString("lang")
		lang, err := translate.ParseLang(langFlag)
		if err != nil {
			return err
		}

		doc, err := current.store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		out, err := translate.New(current.cfg.Translate, current.log).TranslateDocument(ctx, doc, lang)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		out.ID = doc.ID + "-" + string(lang)
		out.Metadata.CreatedAt = ""
		if err := current.store.Save(ctx, out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.ID)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export a report as HTML, Markdown, JSON or PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		formatFlag, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		format, err := reporter.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		doc, err := current.store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		r, err := reporter.New()
		if err != nil {
			return err
		}

		var data []byte
		if format == reporter.FormatPDF {
			data, err = reporter.NewPDFRenderer(r, current.cfg.Export, current.log).Render(ctx, doc)
		} else {
			var s string
			s, err = r.Render(doc, format)
			data = []byte(s)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if output == "-" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if output == "" {
			output = filepath.Join(current.cfg.Export.OutputDir, reporter.FileName(doc, format, time.Now()))
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", output)
		return nil
	},
}

func init() {
	translateCmd.Flags().String("lang", "en", "Target language (en, es)")

	exportCmd.Flags().String("format", "html", "Export format (html, markdown, json, pdf)")
	exportCmd.Flags().String("output", "", "Output file, - for stdout (default: generated name in export.output_dir)")
}
