package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/prngcl/internal/accel"
	"github.com/samcharles93/prngcl/internal/api"
	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/export"
	"github.com/samcharles93/prngcl/internal/generators"
	"github.com/samcharles93/prngcl/internal/logger"
	"github.com/samcharles93/prngcl/internal/quality"
	"github.com/samcharles93/prngcl/internal/session"
)

func openAccelerator(log logger.Logger) (device.Accelerator, error) {
	return accel.Open(accelName, accel.Options{
		Align:   align,
		Workers: workers,
		Kernels: generators.Kernels(),
		Logger:  log,
	})
}

func deviceCmd() *cli.Command {
	var (
		output string
		show   int
	)

	flags := append(generatorFlags(), runFlags()...)
	flags = append(flags, deviceFlags()...)
	return &cli.Command{
		Name:  "device",
		Usage: "Provision, compile and run a generator on an accelerator",
		Flags: append(flags,
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write all values to a .csv or .xlsx file",
				Destination: &output,
			},
			&cli.IntFlag{
				Name:        "show",
				Usage:       "values of lane 0 to print",
				Value:       8,
				Destination: &show,
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
			run, err := runFromFlags()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			acc, err := openAccelerator(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() {
				if err := acc.Close(); err != nil {
					log.Warn("close accelerator", "error", err)
				}
			}()

			res, err := session.Run(ctx, acc, session.Request{Descriptor: d, Engine: e, Run: run}, log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			report, err := quality.Analyze(res.Values, 0)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if output != "" {
				if err := export.WriteFile(output, d.Name, export.FromResult(res)); err != nil {
					return cli.Exit(fmt.Sprintf("error: write %s: %v", output, err), 1)
				}
				log.Info("values written", "path", output, "values", len(res.Values))
			}

			if jsonOutput {
				return printJSON(os.Stdout, map[string]any{
					"id":          res.ID,
					"generator":   res.Generator,
					"accelerator": res.Accelerator,
					"options":     res.Options,
					"buffers":     api.BufferInfos(res.Buffers),
					"report":      report,
				})
			}

			printFields(os.Stdout, res.ID, [][2]string{
				{"generator", res.Generator},
				{"accelerator", res.Accelerator},
				{"run", fmt.Sprintf("%d instances × %d samples, %s", res.Instances, res.Samples, res.Precision)},
				{"options", res.Options},
				{"duration", res.Duration.String()},
			})
			rows := make([][]string, 0, len(res.Buffers))
			for _, b := range res.Buffers {
				rows = append(rows, []string{
					strconv.Itoa(int(b.Handle)), b.Name, b.Kind.String(),
					strconv.Itoa(b.Count), strconv.Itoa(b.ElemSize),
				})
			}
			printTable(os.Stdout, []string{"HANDLE", "NAME", "KIND", "COUNT", "ELEM"}, rows)

			lane := res.Lane(0)
			for i := range min(show, len(lane)) {
				fmt.Printf("lane 0 [%d] %s\n", i, strconv.FormatFloat(lane[i], 'g', -1, 64))
			}
			printReport(report)
			return nil
		},
	}
}

func printReport(r quality.Report) {
	printFields(os.Stdout, "quality", [][2]string{
		{"count", strconv.Itoa(r.Count)},
		{"mean", fmt.Sprintf("%.6f", r.Mean)},
		{"stddev", fmt.Sprintf("%.6f", r.StdDev)},
		{"range", fmt.Sprintf("[%.9g, %.9g]", r.Min, r.Max)},
		{"chi²", fmt.Sprintf("%.3f (%d bins)", r.ChiSquared, r.Bins)},
		{"p-value", fmt.Sprintf("%.4g", r.PValue)},
	})
}
