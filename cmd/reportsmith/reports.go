package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/reportsmith/pkg/reconciler"
	"github.com/amosWeiskopf/reportsmith/pkg/report"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a report from a template",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _ := cmd.Flags().GetString("client")
		domain, _ := cmd.Flags().GetString("domain")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		comparison, _ := cmd.Flags().GetString("comparison")
		logo, _ := cmd.Flags().GetString("logo")
		blog, _ := cmd.Flags().GetBool("blog")
		tmpl, _ := cmd.Flags().GetString("template")
		createdBy, _ := cmd.Flags().GetString("created-by")

		setup := report.Setup{
			ClientName: client,
			Domain:     domain,
			Logo:       logo,
			HasBlog:    blog,
			CreatedBy:  createdBy,
			Template:   tmpl,
		}
		if start != "" && end != "" {
			period, err := reconciler.NewDateRange(start, end)
			if err != nil {
				return fmt.Errorf("invalid period: %w", err)
			}
			setup.PeriodStart, setup.PeriodEnd = period.Start, period.End
		}
		switch strings.ToLower(comparison) {
		case "", "ano-anterior", "previous-year":
			setup.Comparison = report.ComparisonPreviousYear
		case "periodo-anterior", "previous-period":
			setup.Comparison = report.ComparisonPreviousPeriod
		default:
			return fmt.Errorf("unknown comparison %q (ano-anterior or periodo-anterior)", comparison)
		}

		d, err := report.NewFromTemplate(setup, report.WithDeletePolicy(current.policy))
		if err != nil {
			return err
		}
		if err := current.store.Save(cmd.Context(), d.Doc()); err != nil {
			return err
		}
		current.log.WithField("report", d.Doc().ID).Info("Report created")
		fmt.Fprintln(cmd.OutOrStdout(), d.Doc().ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := current.store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No reports yet")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCLIENT\tPERIOD\tUPDATED")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.ClientName, d.Period, displayTime(d.LastTouched()))
		}
		return w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a stored report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := current.store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		current.log.WithField("report", args[0]).Info("Report deleted")
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("clear removes the whole history; pass --yes to confirm")
		}
		if err := current.store.Clear(cmd.Context()); err != nil {
			return err
		}
		current.log.Info("Report history cleared")
		return nil
	},
}

func displayTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("02/01/2006 15:04")
}

func init() {
	newCmd.Flags().String("client", "", "Client name")
	newCmd.Flags().String("domain", "", "Client domain")
	newCmd.Flags().String("start", "", "Start of the analysis period (dd/mm/yyyy)")
	newCmd.Flags().String("end", "", "End of the analysis period (dd/mm/yyyy)")
	newCmd.Flags().String("comparison", "ano-anterior", "Comparison period (ano-anterior, periodo-anterior)")
	newCmd.Flags().String("logo", "", "Logo URL")
	newCmd.Flags().Bool("blog", false, "The client has a blog")
	newCmd.Flags().String("template", report.DefaultTemplate, "Report template")
	newCmd.Flags().String("created-by", "", "Author shown in the footer")

	clearCmd.Flags().Bool("yes", false, "Confirm clearing the history")
}
