package carriers

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func RegisterCLI(registry func() *Registry) *cli.Command {
	return &cli.Command{
		Name:  "carriers",
		Usage: "Manage station carrier numbers",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list the distinct carrier numbers in use",
				Action: func(c *cli.Context) error {
					cns, err := registry().ListDistinctCNs(c.Context)
					if err != nil {
						return err
					}

					for _, cn := range cns {
						fmt.Fprintln(c.App.Writer, cn)
					}

					return nil
				},
			},
			{
				Name:      "assign",
				Usage:     "give a new carrier number to the first station without one",
				ArgsUsage: "<cn>",
				Action: func(c *cli.Context) error {
					id, err := registry().AssignToFirstUnassigned(c.Context, c.Args().First())
					if err != nil {
						return err
					}

					fmt.Fprintf(c.App.Writer, "Assigned %s to station %d\n", c.Args().First(), id)
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "overwrite the carrier number of a station",
				ArgsUsage: "<station id> <cn>",
				Action: func(c *cli.Context) error {
					var id uint
					if _, err := fmt.Sscan(c.Args().Get(0), &id); err != nil {
						return cli.Exit("station id must be a number", 1)
					}

					return registry().SetForStation(c.Context, id, c.Args().Get(1))
				},
			},
			{
				Name:      "bulk",
				Usage:     "tag every station without a carrier number",
				ArgsUsage: "<cn>",
				Action: func(c *cli.Context) error {
					count, err := registry().BulkAssignUnassigned(c.Context, c.Args().First())
					if err != nil {
						return err
					}

					fmt.Fprintf(c.App.Writer, "Updated %d stations\n", count)
					return nil
				},
			},
		},
	}
}
