package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/workspace"
)

// emit writes v as JSON or YAML, or calls text for the default format.
func (a *app) emit(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	switch a.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

// blockView is a record with its payload decoded, so YAML output shows
// the configuration fields instead of raw bytes.
type blockView struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"`
	Data     any            `json:"data" yaml:"data"`
	Position block.Position `json:"position" yaml:"position"`
	Input    *string        `json:"input" yaml:"input"`
	Output   *string        `json:"output" yaml:"output"`
}

func viewOf(inst block.Instance) (blockView, error) {
	rec, err := workspace.ToRecord(inst)
	if err != nil {
		return blockView{}, err
	}
	var data any
	if err := json.Unmarshal(rec.Data, &data); err != nil {
		return blockView{}, fmt.Errorf("decode %s data: %w", rec.ID, err)
	}
	return blockView{
		ID:       rec.ID,
		Type:     rec.Type,
		Data:     data,
		Position: rec.Position,
		Input:    rec.Input,
		Output:   rec.Output,
	}, nil
}

func viewsOf(instances []block.Instance) ([]blockView, error) {
	out := make([]blockView, 0, len(instances))
	for _, inst := range instances {
		v, err := viewOf(inst)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func blocksTable(w io.Writer, views []blockView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tX\tY\tINPUT\tOUTPUT")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%s\t%s\n",
			v.ID, v.Type, v.Position.X, v.Position.Y, orDash(v.Input), orDash(v.Output))
	}
	return tw.Flush()
}

func chainLine(views []blockView) string {
	parts := make([]string, len(views))
	for i, v := range views {
		parts[i] = fmt.Sprintf("%s(%s)", v.Type, v.ID)
	}
	return strings.Join(parts, " -> ")
}
