package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/device/host"
	"github.com/samcharles93/prngcl/internal/prng"
)

func optionsCmd() *cli.Command {
	flags := append(generatorFlags(), runFlags()...)
	return &cli.Command{
		Name:  "options",
		Usage: "Print the kernel compile options for a run",
		Flags: append(flags, jsonFlag()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyCommandConfig(cmd, activeConfig)

			d, e, err := engineFromFlags(cmd)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			run, err := runFromFlags()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			// Options never allocate, so an unconfigured host context is enough.
			acc := host.New(host.Config{})
			defer acc.Close()
			opts := prng.BaseOptions(d, run).Append(e.CompileOptions(acc, run)...)

			if jsonOutput {
				defs, err := device.ParseOptions(opts.String())
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				return printJSON(os.Stdout, map[string]any{
					"generator": d.Name,
					"source":    d.Source,
					"options":   opts.String(),
					"defines":   defs,
				})
			}
			fmt.Println(opts.String())
			return nil
		},
	}
}
