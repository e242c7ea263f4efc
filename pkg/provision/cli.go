package provision

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI(run func(ctx context.Context) error) *cli.Command {
	return &cli.Command{
		Name:  "provision",
		Usage: "Create the schema and seed default stations, carrier numbers and routes",
		Action: func(c *cli.Context) error {
			if err := run(c.Context); err != nil {
				return err
			}

			log.Info().Msg("Provisioning complete")
			return nil
		},
	}
}
