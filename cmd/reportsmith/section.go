package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/report"
)

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Edit the sections of a stored report",
}

// editReport loads a report, applies fn and saves it back
func editReport(ctx context.Context, id string, fn func(d *report.Document) error) error {
	doc, err := current.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(report.Wrap(doc, report.WithDeletePolicy(current.policy))); err != nil {
		return err
	}
	return current.store.Save(ctx, doc)
}

var sectionListCmd = &cobra.Command{
	Use:   "list REPORT",
	Short: "List the sections in display order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := current.store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER\tID\tTYPE\tTITLE\tVISIBLE")
		for _, s := range report.Wrap(doc).Sorted() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", s.Order, s.ID, s.Type, s.Title, s.Visible)
		}
		return w.Flush()
	},
}

var sectionAddCmd = &cobra.Command{
	Use:   "add REPORT TYPE [TITLE]",
	Short: "Append a section",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var title string
		if len(args) == 3 {
			title = args[2]
		}
		return editReport(cmd.Context(), args[0], func(d *report.Document) error {
			s, err := d.Add(models.SectionType(args[1]), title)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.ID)
			return nil
		})
	},
}

var sectionRmCmd = &cobra.Command{
	Use:   "rm REPORT SECTION",
	Short: "Delete a section",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editReport(cmd.Context(), args[0], func(d *report.Document) error {
			return d.Delete(args[1])
		})
	},
}

var sectionMoveCmd = &cobra.Command{
	Use:   "move REPORT SECTION ORDER",
	Short: "Move a section to a new position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("order must be a number: %w", err)
		}
		return editReport(cmd.Context(), args[0], func(d *report.Document) error {
			return d.Reorder(args[1], order)
		})
	},
}

var sectionToggleCmd = &cobra.Command{
	Use:   "toggle REPORT SECTION",
	Short: "Show or hide a section",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editReport(cmd.Context(), args[0], func(d *report.Document) error {
			visible, err := d.ToggleVisibility(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "visible: %t\n", visible)
			return nil
		})
	},
}

var sectionRenameCmd = &cobra.Command{
	Use:   "rename REPORT SECTION TITLE",
	Short: "Rename a section",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editReport(cmd.Context(), args[0], func(d *report.Document) error {
			return d.Rename(args[1], args[2])
		})
	},
}

var sectionDataCmd = &cobra.Command{
	Use:   "data REPORT SECTION JSON",
	Short: "Merge a JSON object into the section data",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch map[string]any
		dec := json.NewDecoder(strings.NewReader(args[2]))
		if err := dec.Decode(&patch); err != nil {
			return fmt.Errorf("section data must be a JSON object: %w", err)
		}
		return editReport(cmd.Context(), args[0], func(d *report.Document) error {
			return d.UpdateData(args[1], patch)
		})
	},
}

func init() {
	sectionCmd.AddCommand(sectionListCmd)
	sectionCmd.AddCommand(sectionAddCmd)
	sectionCmd.AddCommand(sectionRmCmd)
	sectionCmd.AddCommand(sectionMoveCmd)
	sectionCmd.AddCommand(sectionToggleCmd)
	sectionCmd.AddCommand(sectionRenameCmd)
	sectionCmd.AddCommand(sectionDataCmd)
}
