package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	// A missing .env is normal; the environment may already be set.
	_ = godotenv.Load()

	app := &cli.Command{
		Name:   "prngcl",
		Usage:  "Pseudo-random generator engines for accelerator-backed Monte Carlo runs",
		Flags:  loggingFlags(),
		Before: setupLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			listCmd(),
			describeCmd(),
			sampleCmd(),
			optionsCmd(),
			deviceCmd(),
			checkCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
