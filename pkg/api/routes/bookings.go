package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/railline/pkg/booking"
	"github.com/travigo/railline/pkg/network"
)

type bookingRequest struct {
	From    uint `json:"from"`
	To      uint `json:"to"`
	Confirm bool `json:"confirm"`
}

type bookingResponse struct {
	Status booking.OutcomeStatus `json:"status"`
	Quote  *booking.Quote        `json:"quote,omitempty"`
	Ticket *network.Ticket       `json:"ticket,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func QuotesRouter(router fiber.Router, service *booking.Service) {
	router.Get("/", func(c *fiber.Ctx) error {
		from, err := getIDQuery(c, "from")
		if err != nil {
			return sendError(c, err)
		}
		to, err := getIDQuery(c, "to")
		if err != nil {
			return sendError(c, err)
		}

		quote, err := service.Quote(c.UserContext(), from, to)
		if err != nil {
			return sendError(c, err)
		}

		return c.JSON(quote)
	})
}

func BookingsRouter(router fiber.Router, service *booking.Service) {
	router.Get("/", func(c *fiber.Ctx) error {
		tickets, err := service.Tickets(c.UserContext())
		if err != nil {
			return sendError(c, err)
		}

		return c.JSON(tickets)
	})

	router.Post("/", func(c *fiber.Ctx) error {
		var request bookingRequest
		if err := c.BodyParser(&request); err != nil {
			return sendError(c, fmt.Errorf("booking body could not be parsed: %w", network.ErrValidation))
		}
		if request.From == 0 || request.To == 0 {
			return sendError(c, fmt.Errorf("from and to are required: %w", network.ErrValidation))
		}

		outcome := service.QuoteAndBook(c.UserContext(), request.From, request.To, func(booking.Quote) bool {
			return request.Confirm
		})

		response := bookingResponse{
			Status: outcome.Status,
			Quote:  outcome.Quote,
			Ticket: outcome.Ticket,
		}
		if outcome.Err != nil {
			response.Error = outcome.Err.Error()
		}

		c.Status(outcomeStatusCode(outcome))
		return c.JSON(response)
	})
}

func outcomeStatusCode(outcome booking.Outcome) int {
	switch outcome.Status {
	case booking.OutcomeBooked:
		return fiber.StatusCreated
	case booking.OutcomeDeclined:
		return fiber.StatusOK
	case booking.OutcomeNoRouteAvailable, booking.OutcomeInvalidRequest:
		return fiber.StatusNotFound
	case booking.OutcomeConnectivityFailure:
		return fiber.StatusServiceUnavailable
	case booking.OutcomeCancelled:
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
