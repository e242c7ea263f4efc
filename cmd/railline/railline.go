package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railline/pkg/api"
	"github.com/travigo/railline/pkg/booking"
	"github.com/travigo/railline/pkg/carriers"
	"github.com/travigo/railline/pkg/config"
	"github.com/travigo/railline/pkg/database"
	"github.com/travigo/railline/pkg/dataimporter"
	"github.com/travigo/railline/pkg/engine"
	"github.com/travigo/railline/pkg/provision"
	"github.com/travigo/railline/pkg/stations"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("RAILLINE_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("RAILLINE_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	// Components are built in Before once the config flag is known
	e := &engine.Engine{}

	app := &cli.App{
		Name:        "railline",
		Description: "Station network & booking engine for a single railway line",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultPath,
				Usage: "path to the YAML configuration file",
			},
		},

		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"), c.IsSet("config"))
			if err != nil {
				return err
			}

			e.Setup(cfg, database.NewSession(cfg.Database))

			return nil
		},

		After: func(c *cli.Context) error {
			return e.Close()
		},

		Commands: []*cli.Command{
			api.RegisterCLI(e),
			provision.RegisterCLI(e.Provision),
			stations.RegisterCLI(func() *stations.Directory { return e.Stations }),
			dataimporter.RegisterCLI(func() *stations.Directory { return e.Stations }),
			booking.RegisterCLI(func() *booking.Service { return e.Booking }),
			carriers.RegisterCLI(func() *carriers.Registry { return e.Carriers }),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
