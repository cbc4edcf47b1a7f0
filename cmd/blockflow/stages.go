package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/stage"
)

func newChainsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chains <stage>",
		Short: "Show the stage's linked chains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			chains, err := w.Chains(stage.ID(args[0]))
			if err != nil {
				return err
			}
			views := make([][]blockView, 0, len(chains))
			for _, ch := range chains {
				v, err := viewsOf(ch)
				if err != nil {
					return err
				}
				views = append(views, v)
			}
			return a.emit(cmd, views, func(out io.Writer) error {
				for i, v := range views {
					fmt.Fprintf(out, "%d: %s\n", i+1, chainLine(v))
				}
				return nil
			})
		},
	}
}

func newPaletteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "palette <stage>",
		Short: "Show which block types can still be added",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := w.Palette(stage.ID(args[0]))
			if err != nil {
				return err
			}
			return a.emit(cmd, entries, func(out io.Writer) error {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TYPE\tLABEL\tCOUNT\tMAX\tSTATE")
				for _, e := range entries {
					state := "available"
					if e.Inactive {
						state = "inactive"
					}
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.TypeKey, e.Label, e.Count, e.MaxInstances, state)
				}
				return tw.Flush()
			})
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	var submit bool
	cmd := &cobra.Command{
		Use:   "validate <stage>",
		Short: "Check the stage's chains against its rule",
		Long: `Runs the stage rule. A failing rule prints VALIDATION_FAILED with the
reason and exits non-zero. With --submit a passing stage also completes
its progress step.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			check := w.Validate
			if submit {
				check = w.Submit
			}
			id := stage.ID(args[0])
			res, err := check(cmd.Context(), id)
			if err != nil {
				return err
			}
			report := res.Report()
			if err := a.emit(cmd, report, func(out io.Writer) error {
				if res.Success {
					_, err := fmt.Fprintln(out, "ok")
					return err
				}
				_, err := fmt.Fprintf(out, "%s: %s\n", report.Error, report.Message)
				return err
			}); err != nil {
				return err
			}
			if !res.Success {
				return errors.ValidationFailed(string(id), res.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&submit, "submit", false, "complete the stage's progress step when validation passes")
	return cmd
}
