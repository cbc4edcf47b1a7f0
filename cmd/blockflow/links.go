package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/blockflow/stage"
	"github.com/kbukum/blockflow/workspace"
)

type linkOp func(w *workspace.Workspace, ctx context.Context, id stage.ID, from, to string) error

func newLinkCmd(a *app) *cobra.Command {
	return newLinkOpCmd(a, "link", "Link from's output to to's input", "linked", (*workspace.Workspace).Connect)
}

func newUnlinkCmd(a *app) *cobra.Command {
	return newLinkOpCmd(a, "unlink", "Remove the link from -> to", "unlinked", (*workspace.Workspace).Disconnect)
}

func newLinkOpCmd(a *app, use, short, verb string, op linkOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <stage> <from> <to>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			if err := op(w, cmd.Context(), stage.ID(args[0]), args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s -> %s\n", verb, args[1], args[2])
			return nil
		},
	}
}
