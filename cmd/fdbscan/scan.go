package main

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/pterm/pterm"
	"github.com/shestakovda/fdbscan"
	"github.com/shestakovda/fdbscan/expr"
	"github.com/shestakovda/fdbscan/wire"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var filter, partition string
	var columns []string
	var limit int

	cmd := &cobra.Command{
		Use:   "scan <object>",
		Short: "Scan one fragment on the executor and print matching rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var e *env
			var f *fdbscan.Offload
			var tbl wire.Table
			var dataset *arrow.Schema

			ctx := cmd.Context()
			opts := fdbscan.ScanOptions{UseThreads: cfg.UseThreads}
			frag := fdbscan.Fragment{Source: fdbscan.FileSource{Path: args[0]}}

			if opts.Filter, err = expr.Parse(filter); err != nil {
				return err
			}

			if frag.Partition, err = expr.Parse(partition); err != nil {
				return err
			}

			if e, err = newEnv(ctx); err != nil {
				return err
			}
			defer e.close()

			frag.Source.FS = e.fs

			if f, err = e.offload(); err != nil {
				return err
			}

			if dataset, err = f.Inspect(ctx, frag.Source); err != nil {
				return err
			}

			opts.Dataset = dataset

			if opts.Projection, err = project(dataset, columns); err != nil {
				return err
			}

			if tbl, err = fdbscan.Scan(ctx, f, &opts, frag); err != nil {
				return err
			}
			defer tbl.Release()

			printTable(tbl, limit)
			pterm.Success.Printfln("%d rows in %d batches", tbl.NumRows(), len(tbl.Batches))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Filter, e.g. \"column_a > 5 and column_b is not null\"")
	cmd.Flags().StringVarP(&partition, "partition", "p", "", "Partition guarantee, e.g. \"year = 2020\"")
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "Projected columns, all by default")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "How many rows to print")
	return cmd
}

func project(dataset *arrow.Schema, columns []string) (*arrow.Schema, error) {
	if len(columns) == 0 {
		return dataset, nil
	}

	fields := make([]arrow.Field, 0, len(columns))

	for _, name := range columns {
		idx := dataset.FieldIndices(name)

		if len(idx) == 0 {
			return nil, fmt.Errorf("unknown column %q", name)
		}

		fields = append(fields, dataset.Field(idx[0]))
	}

	return arrow.NewSchema(fields, nil), nil
}

func printTable(tbl wire.Table, limit int) {
	head := make([]string, 0, tbl.Schema.NumFields())

	for _, fld := range tbl.Schema.Fields() {
		head = append(head, fld.Name)
	}

	data := pterm.TableData{head}

	for _, rec := range tbl.Batches {
		for i := 0; i < int(rec.NumRows()) && len(data) <= limit; i++ {
			row := make([]string, rec.NumCols())

			for j := range row {
				row[j] = rec.Column(j).ValueStr(i)
			}

			data = append(data, row)
		}
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Warning.Println(err.Error())
	}
}
