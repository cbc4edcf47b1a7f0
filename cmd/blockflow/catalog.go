package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/blockflow/progress"
	"github.com/kbukum/blockflow/registry"
	"github.com/kbukum/blockflow/stage"
)

// catalogStage is the exported descriptor table of one stage.
type catalogStage struct {
	Stage stage.ID            `json:"stage" yaml:"stage"`
	Title string              `json:"title" yaml:"title"`
	Step  progress.Step       `json:"step" yaml:"step"`
	Types []registry.TableRow `json:"types" yaml:"types"`
}

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [stage]",
		Short: "Print the block types each stage offers",
		Long: `Prints every stage's descriptor table: type key, label, ports, instance
limit and whether the type is protected. YAML output (-o yaml) is suitable
for checking catalog changes into review.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := stage.All()
			if len(args) == 1 {
				def, err := stage.Parse(args[0])
				if err != nil {
					return err
				}
				defs = []stage.Definition{def}
			}
			out := make([]catalogStage, 0, len(defs))
			for _, def := range defs {
				out = append(out, catalogStage{
					Stage: def.ID,
					Title: def.Title,
					Step:  def.Step,
					Types: def.Registry.Table(),
				})
			}
			return a.emit(cmd, out, func(w io.Writer) error { return catalogTable(w, out) })
		},
	}
}

func catalogTable(w io.Writer, stages []catalogStage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, s := range stages {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s (%s)\n", s.Title, s.Stage)
		fmt.Fprintln(tw, "TYPE\tLABEL\tIN\tOUT\tMAX\tPROTECTED")
		for _, r := range s.Types {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\t%t\n",
				r.TypeKey, r.Label, r.AcceptsInput, r.ProducesOutput, r.MaxInstances, r.Protected)
		}
	}
	return tw.Flush()
}
