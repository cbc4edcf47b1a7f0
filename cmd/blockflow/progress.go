package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/blockflow/progress"
	"github.com/kbukum/blockflow/workspace"
)

func newProgressCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show or change stage progress",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show every step's status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				w, err := a.workspace(cmd.Context())
				if err != nil {
					return err
				}
				return a.emitProgress(cmd, w.Progress())
			},
		},
		newStepCmd(a, "complete", "Mark a step completed", (*workspace.Workspace).CompleteStep),
		newStepCmd(a, "reset", "Mark a step not completed; later steps keep their state", (*workspace.Workspace).ResetStep),
	)
	return cmd
}

func newStepCmd(a *app, use, short string, op func(*workspace.Workspace, context.Context, progress.Step) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <step>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			if err := op(w, cmd.Context(), progress.Step(args[0])); err != nil {
				return err
			}
			return a.emitProgress(cmd, w.Progress())
		},
	}
}

func (a *app) emitProgress(cmd *cobra.Command, states []progress.StepState) error {
	return a.emit(cmd, states, func(out io.Writer) error {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STEP\tSTATUS")
		for _, s := range states {
			fmt.Fprintf(tw, "%s\t%s\n", s.Step, s.Status)
		}
		return tw.Flush()
	})
}
