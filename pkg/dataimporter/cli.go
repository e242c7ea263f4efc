package dataimporter

import (
	"os"

	"github.com/travigo/railline/pkg/stations"
	"github.com/urfave/cli/v2"
)

func RegisterCLI(directory func() *stations.Directory) *cli.Command {
	return &cli.Command{
		Name:      "import-stations",
		Usage:     "Import stations from a CSV file with the header name,order,cn",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one CSV file", 1)
			}

			file, err := os.Open(c.Args().First())
			if err != nil {
				return err
			}
			defer file.Close()

			_, err = ImportStations(c.Context, directory(), file)
			return err
		},
	}
}
