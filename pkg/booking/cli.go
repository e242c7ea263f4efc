package booking

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"
)

// PromptConfirm asks on in whether the quote should be booked
func PromptConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	return func(quote Quote) bool {
		fmt.Fprintf(out, "%s\nBook this ticket? [y/N] ", quote)

		answer, _ := bufio.NewReader(in).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))

		return answer == "y" || answer == "yes"
	}
}

func RegisterCLI(service func() *Service) *cli.Command {
	return &cli.Command{
		Name:  "book",
		Usage: "Quote and book a ticket between two stations",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "from", Required: true, Usage: "origin station id"},
			&cli.UintFlag{Name: "to", Required: true, Usage: "destination station id"},
			&cli.BoolFlag{Name: "yes", Usage: "book without asking for confirmation"},
		},
		Action: func(c *cli.Context) error {
			confirm := PromptConfirm(c.App.Reader, c.App.Writer)
			if c.Bool("yes") {
				confirm = func(Quote) bool { return true }
			}

			outcome := service().QuoteAndBook(c.Context, c.Uint("from"), c.Uint("to"), confirm)

			switch outcome.Status {
			case OutcomeBooked:
				fmt.Fprintf(c.App.Writer, "Booked ticket %d for %.2f\n", outcome.Ticket.ID, outcome.Ticket.Price)
				return nil
			case OutcomeDeclined:
				fmt.Fprintln(c.App.Writer, "Booking cancelled")
				return nil
			case OutcomeNoRouteAvailable:
				return cli.Exit("No route available between these stations", 2)
			default:
				return cli.Exit(outcome.Err.Error(), 1)
			}
		},
	}
}
