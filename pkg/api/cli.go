package api

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/railline/pkg/engine"
	"github.com/urfave/cli/v2"
)

func RegisterCLI(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the booking web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					// A failed connection is not fatal, every request retries it
					if err := e.Session.Connect(c.Context); err == nil {
						if err := e.Provision(c.Context); err != nil {
							log.Error().Err(err).Msg("Provisioning incomplete")
						}
					}

					listen := c.String("listen")
					if listen == "" {
						listen = e.Config.Server.Listen
					}

					log.Info().Str("listen", listen).Msg("Starting web API")

					return SetupServer(e, listen)
				},
			},
		},
	}
}
