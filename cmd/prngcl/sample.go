package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/prngcl/internal/logger"
)

func sampleCmd() *cli.Command {
	var (
		count int
		raw   bool
	)

	return &cli.Command{
		Name:  "sample",
		Usage: "Draw values from a generator on the host",
		Flags: append(generatorFlags(),
			&cli.IntFlag{
				Name:        "count",
				Aliases:     []string{"c"},
				Usage:       "number of draws",
				Value:       10,
				Destination: &count,
			},
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print raw 32-bit outputs instead of floating values",
				Destination: &raw,
			},
			jsonFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyCommandConfig(cmd, activeConfig)
			log := logger.FromContext(ctx)

			d, e, err := engineFromFlags(cmd)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if count < 1 {
				return cli.Exit("error: --count must be at least 1", 1)
			}
			log.Debug("sampling", "generator", d.Name, "seed", seedValue, "count", count)

			if raw {
				out := make([]uint32, count)
				for i := range out {
					out[i] = e.Uint32()
				}
				if jsonOutput {
					return printJSON(os.Stdout, out)
				}
				for _, v := range out {
					fmt.Println(v)
				}
				return nil
			}

			out := make([]float64, count)
			for i := range out {
				out[i] = e.Float64()
			}
			if jsonOutput {
				return printJSON(os.Stdout, out)
			}
			for _, v := range out {
				fmt.Println(strconv.FormatFloat(v, 'g', -1, 64))
			}
			return nil
		},
	}
}
