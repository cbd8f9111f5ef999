package main

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <local file> <object>",
		Short: "Upload a fragment file into the configured store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()

			src, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			dst, err := e.fs.Create(ctx, args[1])
			if err != nil {
				return err
			}

			size, err := io.Copy(dst, src)
			if err != nil {
				dst.Close()
				return err
			}

			if err = dst.Close(); err != nil {
				return err
			}

			pterm.Success.Printfln("%s: %d bytes", args[1], size)
			return nil
		},
	}
}
