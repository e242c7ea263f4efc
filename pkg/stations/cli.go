package stations

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func RegisterCLI(directory func() *Directory) *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "Inspect and manage the stations along the line",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list stations in line order",
				Action: func(c *cli.Context) error {
					list, err := directory().ListStations(c.Context)
					if err != nil {
						return err
					}

					for _, station := range list {
						cn := "-"
						if station.HasCN() {
							cn = *station.CN
						}
						fmt.Fprintf(c.App.Writer, "%4d  %3d  %-8s %s\n", station.ID, station.Order, cn, station.Name)
					}

					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "add a station",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "order", Required: true, Usage: "position along the line"},
					&cli.StringFlag{Name: "cn", Usage: "carrier number"},
				},
				Action: func(c *cli.Context) error {
					cn := c.String("cn")
					id, err := directory().AddStation(c.Context, c.Args().First(), c.Int("order"), &cn)
					if err != nil {
						return err
					}

					fmt.Fprintf(c.App.Writer, "Added station %d\n", id)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a station that no route or ticket refers to",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					var id uint
					if _, err := fmt.Sscan(c.Args().First(), &id); err != nil {
						return cli.Exit("station id must be a number", 1)
					}

					return directory().DeleteStation(c.Context, id)
				},
			},
		},
	}
}
