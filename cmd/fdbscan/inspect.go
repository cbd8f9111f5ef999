package main

import (
	"github.com/pterm/pterm"
	"github.com/shestakovda/fdbscan"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <object>",
		Short: "Print the schema of a stored fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			f, err := e.offload()
			if err != nil {
				return err
			}

			schema, err := f.Inspect(ctx, fdbscan.FileSource{Path: args[0], FS: e.fs})
			if err != nil {
				return err
			}

			data := pterm.TableData{{"column", "type", "nullable"}}

			for _, fld := range schema.Fields() {
				null := "no"
				if fld.Nullable {
					null = "yes"
				}
				data = append(data, []string{fld.Name, fld.Type.String(), null})
			}

			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}
