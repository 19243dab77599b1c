package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/prngcl/internal/api"
	"github.com/samcharles93/prngcl/internal/generators"
)

func describeCmd() *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Show the descriptor of a generator",
		ArgsUsage: "NAME",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return cli.Exit("error: generator name is required", 1)
			}
			reg, err := generators.NewRegistry()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			d, err := reg.Get(name)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if jsonOutput {
				return printJSON(os.Stdout, api.NewGeneratorInfo(d))
			}

			initKernel := d.InitKernel
			if initKernel == "" {
				initKernel = "(none)"
			}
			params := strings.Join(d.Params, ", ")
			if params == "" {
				params = "(none)"
			}
			printFields(os.Stdout, d.Name, [][2]string{
				{"bitness", strconv.Itoa(d.Bitness)},
				{"output", d.Output.String()},
				{"uint range", fmt.Sprintf("[%d, %d]", d.MinUint, d.MaxUint)},
				{"fp range", fmt.Sprintf("[%.17g, %.17g]", d.MinFP, d.MaxFP)},
				{"divisor", strconv.FormatFloat(d.Divisor, 'g', -1, 64)},
				{"k", strconv.FormatFloat(d.K, 'g', -1, 64)},
				{"state size", strconv.Itoa(d.StateSize) + " bytes"},
				{"parameters", params},
				{"source", d.Source},
				{"init kernel", initKernel},
				{"production kernel", d.ProductionKernel},
			})
			return nil
		},
	}
}
