package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/blockflow/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			return a.emit(cmd, info, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "blockflow %s %s\n", info, info.GoVersion)
				return err
			})
		},
	}
}
