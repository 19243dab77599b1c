package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/samcharles93/prngcl/internal/accel"
	"github.com/samcharles93/prngcl/internal/generators"
	"github.com/samcharles93/prngcl/internal/logger"
	"github.com/samcharles93/prngcl/internal/prng"
)

var (
	generatorName string
	seedValue     int64
	precisionName string
	instances     int
	samples       int
	accelName     string
	align         int
	workers       int
	jsonOutput    bool
	logLevel      string
	logFormat     string
	debug         bool
)

func generatorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "generator",
			Aliases:     []string{"g"},
			Usage:       "generator name (see `prngcl list`)",
			Value:       "CONSTANT",
			Destination: &generatorName,
			Sources:     cli.EnvVars("PRNGCL_GENERATOR"),
		},
		&cli.Int64Flag{
			Name:        "seed",
			Aliases:     []string{"s"},
			Usage:       "32-bit run seed",
			Value:       1,
			Destination: &seedValue,
		},
		&cli.StringSliceFlag{
			Name:    "param",
			Aliases: []string{"p"},
			Usage:   "parameter override name=value (repeatable), e.g. seed1=42",
		},
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "instances",
			Aliases:     []string{"n"},
			Usage:       "independent generator lanes",
			Value:       4,
			Destination: &instances,
		},
		&cli.IntFlag{
			Name:        "samples",
			Usage:       "4-wide vectors per lane",
			Value:       16,
			Destination: &samples,
		},
		&cli.StringFlag{
			Name:        "precision",
			Usage:       "output precision (single, double)",
			Value:       "single",
			Destination: &precisionName,
		},
	}
}

func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "accel",
			Usage:       "accelerator (" + accel.Available() + ", auto)",
			Value:       accel.Auto,
			Destination: &accelName,
			Sources:     cli.EnvVars("PRNGCL_ACCEL"),
		},
		&cli.IntFlag{
			Name:        "align",
			Usage:       "buffer alignment quantum in elements",
			Value:       64,
			Destination: &align,
		},
		&cli.IntFlag{
			Name:        "workers",
			Usage:       "concurrently running lanes on the host accelerator",
			Value:       runtime.GOMAXPROCS(0),
			Destination: &workers,
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "print JSON instead of text", Destination: &jsonOutput}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text); pretty only on terminals",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// setupLogging applies the config file, then installs the logger in the
// command context.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	applyGlobalConfig(cmd, cfg)
	activeConfig = cfg

	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	format := logFormat
	if format == "pretty" && !term.IsTerminal(int(os.Stderr.Fd())) {
		format = "text"
	}
	return logger.WithContext(ctx, logger.ForFormat(os.Stderr, format, level)), nil
}

// engineFromFlags resolves the generator and builds a seeded engine with
// the --param overrides applied.
func engineFromFlags(cmd *cli.Command) (*prng.Descriptor, prng.Engine, error) {
	reg, err := generators.NewRegistry()
	if err != nil {
		return nil, nil, err
	}
	d, err := reg.Get(generatorName)
	if err != nil {
		return nil, nil, err
	}
	if seedValue < 0 || seedValue > math.MaxUint32 {
		return nil, nil, fmt.Errorf("seed %d out of 32-bit range", seedValue)
	}
	params, err := paramsFromFlags(cmd)
	if err != nil {
		return nil, nil, err
	}
	return d, d.Instantiate(uint32(seedValue), params), nil
}

func paramsFromFlags(cmd *cli.Command) (prng.Parameters, error) {
	// Lookup takes the first match, so flags go ahead of the config file.
	entries := append(cmd.StringSlice("param"), activeConfig.Parameters...)
	return prng.ParseParameters(entries)
}

func runFromFlags() (*prng.RunParameters, error) {
	p, err := prng.ParsePrecision(precisionName)
	if err != nil {
		return nil, err
	}
	run := prng.NewRunParameters(instances, samples, p)
	if _, err := run.Total(); err != nil {
		return nil, err
	}
	return run, nil
}
