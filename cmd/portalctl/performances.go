package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/deleteflow"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/seed"
)

func newPerformancesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "performances",
		Aliases: []string{"perf"},
		Short:   "List and delete performances",
	}
	cmd.AddCommand(newPerformancesListCmd(g), newPerformancesDeleteCmd(g))
	return cmd
}

func newPerformancesListCmd(g *globalFlags) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the enriched performance listing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := model.ParseStatus(status)
			if err != nil {
				return err
			}
			c, err := g.client(cmd)
			if err != nil {
				return err
			}
			views, err := c.ListPerformances(cmd.Context(), st)
			if err != nil {
				return err
			}
			return printPerformances(cmd.OutOrStdout(), views)
		},
	}
	cmd.Flags().StringVar(&status, "status", string(model.StatusActive), "active, inactive or previous")
	return cmd
}

func printPerformances(w io.Writer, views []model.PerformanceView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tNAME\tBAND\tSET\tVENUE\tCITY\tSTATE")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.PerformanceID, v.Date, v.Name, v.BandName, v.SetListName, v.VenueName, v.City, v.State)
	}
	return tw.Flush()
}

func newPerformancesDeleteCmd(g *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete PERFORMANCE_ID",
		Short: "Soft delete a performance after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client(cmd)
			if err != nil {
				return err
			}
			return runDelete(cmd.Context(), c, args[0], cmd.InOrStdin(), cmd.OutOrStdout(), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// deleter is the part of the API client a delete needs.
type deleter interface {
	DeletePerformance(ctx context.Context, performanceID string) (model.MutationResult, error)
}

// runDelete drives one delete interaction through the confirmation flow.
func runDelete(ctx context.Context, c deleter, id string, in io.Reader, out io.Writer, yes bool) error {
	flow := deleteflow.New()
	if err := flow.RequestDelete(id); err != nil {
		return err
	}

	if !yes && !confirm(in, out, fmt.Sprintf("Delete performance %s? [y/N] ", flow.Target())) {
		if _, err := flow.Fire(deleteflow.Cancel); err != nil {
			return err
		}
		fmt.Fprintln(out, "cancelled")
		return nil
	}
	if _, err := flow.Fire(deleteflow.Confirm); err != nil {
		return err
	}

	res, derr := c.DeletePerformance(ctx, flow.Target())
	state, err := flow.Complete(derr)
	if err != nil {
		return err
	}
	switch state {
	case deleteflow.Success:
		fmt.Fprintf(out, "deleted %s (%d record(s) marked inactive)\n", id, res.Matched)
	case deleteflow.Error:
		if seed.IsStatus(flow.Err(), http.StatusNotFound) {
			fmt.Fprintf(out, "performance %s not found\n", id)
		} else {
			fmt.Fprintf(out, "delete failed: %v\n", flow.Err())
		}
	}
	if _, err := flow.Fire(deleteflow.Acknowledge); err != nil {
		return err
	}
	return derr
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
