package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/stage"
)

func newBlocksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List and edit the blocks of a stage",
	}
	cmd.AddCommand(
		newBlocksListCmd(a),
		newBlocksAddCmd(a),
		newBlocksRemoveCmd(a),
		newBlocksMoveCmd(a),
		newBlocksSetCmd(a),
		newBlocksResetCmd(a),
	)
	return cmd
}

func newBlocksListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list <stage>",
		Aliases: []string{"ls"},
		Short:   "List a stage's blocks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			blocks, err := w.Blocks(stage.ID(args[0]))
			if err != nil {
				return err
			}
			return a.emitBlocks(cmd, blocks)
		},
	}
}

func newBlocksAddCmd(a *app) *cobra.Command {
	var pos block.Position
	cmd := &cobra.Command{
		Use:   "add <stage> <type>",
		Short: "Add a block of the given type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			inst, err := w.AddBlock(cmd.Context(), stage.ID(args[0]), args[1], pos)
			if err != nil {
				return err
			}
			return a.emitBlock(cmd, inst)
		},
	}
	cmd.Flags().Float64Var(&pos.X, "x", 0, "canvas x position")
	cmd.Flags().Float64Var(&pos.Y, "y", 0, "canvas y position")
	return cmd
}

func newBlocksRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <stage> <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a block and clear its links",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			if err := w.RemoveBlock(cmd.Context(), stage.ID(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "removed %s\n", args[1])
			return nil
		},
	}
}

func newBlocksMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <stage> <id> <x> <y>",
		Short: "Move a block on the canvas",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("x: %w", err)
			}
			y, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("y: %w", err)
			}
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			id := stage.ID(args[0])
			if err := w.MoveBlock(cmd.Context(), id, args[1], block.Position{X: x, Y: y}); err != nil {
				return err
			}
			inst, err := w.Block(id, args[1])
			if err != nil {
				return err
			}
			return a.emitBlock(cmd, inst)
		},
	}
}

func newBlocksSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <stage> <id> <json>",
		Short: "Replace a block's configuration",
		Example: `  blockflow blocks set training 3f2a... '{"test_ratio":0.25}'
  blockflow blocks set preprocessing 9c1d... '{"strategy":"median"}'`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(args[2])) {
				return fmt.Errorf("configuration is not valid JSON")
			}
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			inst, err := w.SetBlockData(cmd.Context(), stage.ID(args[0]), args[1], json.RawMessage(args[2]))
			if err != nil {
				return err
			}
			return a.emitBlock(cmd, inst)
		},
	}
}

func newBlocksResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <stage>",
		Short: "Restore a stage to its seeded start and end blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			blocks, err := w.ResetStage(cmd.Context(), stage.ID(args[0]))
			if err != nil {
				return err
			}
			return a.emitBlocks(cmd, blocks)
		},
	}
}

func (a *app) emitBlocks(cmd *cobra.Command, blocks []block.Instance) error {
	views, err := viewsOf(blocks)
	if err != nil {
		return err
	}
	return a.emit(cmd, views, func(w io.Writer) error { return blocksTable(w, views) })
}

func (a *app) emitBlock(cmd *cobra.Command, inst block.Instance) error {
	v, err := viewOf(inst)
	if err != nil {
		return err
	}
	return a.emit(cmd, v, func(w io.Writer) error { return blocksTable(w, []blockView{v}) })
}
