package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/prngcl/internal/api"
	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/generators"
	"github.com/samcharles93/prngcl/internal/logger"
	"github.com/samcharles93/prngcl/internal/version"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxValues   int
		noUI        bool
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the generator REST API",
		Flags: append(deviceFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.IntFlag{
				Name:        "max-values",
				Usage:       "largest run accepted, in values",
				Value:       api.DefaultMaxRunValues,
				Destination: &maxValues,
			},
			&cli.BoolFlag{
				Name:        "no-ui",
				Usage:       "do not serve the dashboard at /",
				Destination: &noUI,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, activeConfig, &addr)
			log := logger.FromContext(ctx)

			reg, err := generators.NewRegistry()
			if err != nil {
				return err
			}
			server := api.NewServer(api.Config{
				Registry: reg,
				Open: func() (device.Accelerator, error) {
					return openAccelerator(log)
				},
				Logger:       log,
				UI:           !noUI,
				MaxRunValues: maxValues,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "accelerator", accelName, "version", version.String())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
