package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/railline/pkg/network"
	"github.com/travigo/railline/pkg/routecatalog"
)

type routeRequest struct {
	FromStationID uint   `json:"from_station_id"`
	ToStationID   uint   `json:"to_station_id"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
}

func RoutesRouter(router fiber.Router, catalog *routecatalog.Catalog) {
	router.Get("/", func(c *fiber.Ctx) error {
		from, err := getIDQuery(c, "from")
		if err != nil {
			return sendError(c, err)
		}
		to, err := getIDQuery(c, "to")
		if err != nil {
			return sendError(c, err)
		}

		route, err := catalog.FindRoute(c.UserContext(), from, to)
		if err != nil {
			return sendError(c, err)
		}

		return c.JSON(route)
	})

	router.Get("/next", func(c *fiber.Ctx) error {
		to, err := getIDQuery(c, "to")
		if err != nil {
			return sendError(c, err)
		}

		route, err := catalog.NextDepartureTo(c.UserContext(), to)
		if err != nil {
			return sendError(c, err)
		}

		return c.JSON(route)
	})

	router.Post("/", func(c *fiber.Ctx) error {
		var request routeRequest
		if err := c.BodyParser(&request); err != nil {
			return sendError(c, fmt.Errorf("route body could not be parsed: %w", network.ErrValidation))
		}

		departure, err := network.ParseClockTime(request.DepartureTime)
		if err != nil {
			return sendError(c, err)
		}
		arrival, err := network.ParseClockTime(request.ArrivalTime)
		if err != nil {
			return sendError(c, err)
		}

		route := network.Route{
			FromStationID: request.FromStationID,
			ToStationID:   request.ToStationID,
			DepartureTime: departure,
			ArrivalTime:   arrival,
		}

		id, err := catalog.AddRoute(c.UserContext(), route)
		if err != nil {
			return sendError(c, err)
		}
		route.ID = id

		c.Status(fiber.StatusCreated)
		return c.JSON(route)
	})
}
