package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/syssam/strata/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}
	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	flags := &commands.Flags{}
	ctrl := &commands.Controller{Flags: flags}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "strata",
		Usage:   "Generate a Go object model and SQL schema from schema documents",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("STRATA_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path of the configuration file, looked up in the working directory by default",
				Sources:     cli.EnvVars("STRATA_CONFIG"),
				Destination: &flags.Config,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "maximum number of concurrent builders",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}
			log.Logger = log.Level(level)
			ctrl.Log = log.Logger
			flags.Workers = int(c.Int("workers"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:    "generate",
				Aliases: []string{"model:build"},
				Usage:   "Build the Go object model of the schemas",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "watch",
						Aliases:     []string{"w"},
						Usage:       "regenerate when a schema file changes",
						Destination: &flags.Watch,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Generate(ctx)
				},
			},
			{
				Name:    "sql",
				Aliases: []string{"sql:build"},
				Usage:   "Build the SQL DDL of the schemas",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.SQLBuild(ctx)
				},
			},
			{
				Name:  "config:convert",
				Usage: "Convert the runtime connections to a Go package",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.ConfigConvert(ctx)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run strata")
	}
}
