package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/prngcl/internal/generators"
	"github.com/samcharles93/prngcl/internal/logger"
	"github.com/samcharles93/prngcl/internal/prng"
	"github.com/samcharles93/prngcl/internal/quality"
)

type checkResult struct {
	Generator string         `json:"generator"`
	Report    quality.Report `json:"report"`
	Bounds    string         `json:"bounds_error,omitempty"`
	Uniform   bool           `json:"uniform"`
}

// checkGenerator draws count host values from d and summarises them.
func checkGenerator(d *prng.Descriptor, seed uint32, params prng.Parameters, count, bins int, alpha float64) (checkResult, error) {
	e := d.Instantiate(seed, params)
	values := make([]float64, count)
	for i := range values {
		values[i] = e.Float64()
	}
	report, err := quality.Analyze(values, bins)
	if err != nil {
		return checkResult{}, err
	}
	res := checkResult{Generator: d.Name, Report: report, Uniform: report.Uniform(alpha)}
	if err := quality.CheckBounds(d, values, false); err != nil {
		res.Bounds = err.Error()
	}
	return res, nil
}

func checkCmd() *cli.Command {
	var (
		count int
		bins  int
		alpha float64
		all   bool
	)

	return &cli.Command{
		Name:  "check",
		Usage: "Check bounds and uniformity of host output",
		Flags: append(generatorFlags(),
			&cli.IntFlag{Name: "count", Usage: "values per generator", Value: 100000, Destination: &count},
			&cli.IntFlag{Name: "bins", Usage: "histogram bins for the chi-squared test", Value: quality.DefaultBins, Destination: &bins},
			&cli.FloatFlag{Name: "alpha", Usage: "significance level", Value: 0.001, Destination: &alpha},
			&cli.BoolFlag{Name: "all", Usage: "check every registered generator", Destination: &all},
			jsonFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyCommandConfig(cmd, activeConfig)
			log := logger.FromContext(ctx)

			d, _, err := engineFromFlags(cmd)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if count < 1 {
				return cli.Exit("error: --count must be at least 1", 1)
			}
			params, err := paramsFromFlags(cmd)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			targets := []*prng.Descriptor{d}
			if all {
				targets = generators.All()
			}

			results := make([]checkResult, 0, len(targets))
			failed := false
			for _, t := range targets {
				res, err := checkGenerator(t, uint32(seedValue), params, count, bins, alpha)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %s: %v", t.Name, err), 1)
				}
				if res.Bounds != "" {
					failed = true
					log.Error("bounds violated", "generator", t.Name, "error", res.Bounds)
				}
				results = append(results, res)
			}

			if jsonOutput {
				if err := printJSON(os.Stdout, results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					bounds := "ok"
					if r.Bounds != "" {
						bounds = "FAIL"
					}
					rows = append(rows, []string{
						r.Generator,
						strconv.Itoa(r.Report.Count),
						fmt.Sprintf("%.6f", r.Report.Mean),
						fmt.Sprintf("%.6f", r.Report.StdDev),
						fmt.Sprintf("%.3f", r.Report.ChiSquared),
						fmt.Sprintf("%.4g", r.Report.PValue),
						strconv.FormatBool(r.Uniform),
						bounds,
					})
				}
				printTable(os.Stdout, []string{"GENERATOR", "COUNT", "MEAN", "STDDEV", "CHI²", "P", "UNIFORM", "BOUNDS"}, rows)
			}
			if failed {
				return cli.Exit("error: bounds check failed", 1)
			}
			return nil
		},
	}
}
