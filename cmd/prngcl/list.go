package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/prngcl/internal/generators"
	"github.com/samcharles93/prngcl/internal/prng"
)

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List registered generators",
		Flags: []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			reg, err := generators.NewRegistry()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if jsonOutput {
				return printJSON(os.Stdout, reg.Names())
			}
			rows := make([][]string, 0, reg.Len())
			for _, d := range reg.All() {
				rows = append(rows, []string{
					d.Name,
					strconv.Itoa(d.Bitness),
					d.Output.String(),
					strconv.Itoa(d.StateSize),
					kernelList(d),
				})
			}
			printTable(os.Stdout, []string{"NAME", "BITS", "OUTPUT", "STATE", "KERNELS"}, rows)
			return nil
		},
	}
}

func kernelList(d *prng.Descriptor) string {
	if d.HasInitKernel() {
		return d.InitKernel + ", " + d.ProductionKernel
	}
	return d.ProductionKernel
}
