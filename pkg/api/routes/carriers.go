package routes

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/railline/pkg/carriers"
	"github.com/travigo/railline/pkg/network"
)

func CarriersRouter(router fiber.Router, registry *carriers.Registry) {
	router.Get("/", func(c *fiber.Ctx) error {
		cns, err := registry.ListDistinctCNs(c.UserContext())
		if err != nil {
			return sendError(c, err)
		}

		return c.JSON(cns)
	})

	router.Post("/", func(c *fiber.Ctx) error {
		var request carrierNumberRequest
		if err := c.BodyParser(&request); err != nil {
			return sendError(c, fmt.Errorf("carrier number body could not be parsed: %w", network.ErrValidation))
		}

		cn := strings.TrimSpace(request.CN)
		id, err := registry.AssignToFirstUnassigned(c.UserContext(), cn)
		if err != nil {
			return sendError(c, err)
		}

		c.Status(fiber.StatusCreated)
		return c.JSON(fiber.Map{
			"station_id": id,
			"cn":         cn,
		})
	})

	router.Post("/bulk", func(c *fiber.Ctx) error {
		var request carrierNumberRequest
		if err := c.BodyParser(&request); err != nil {
			return sendError(c, fmt.Errorf("carrier number body could not be parsed: %w", network.ErrValidation))
		}

		count, err := registry.BulkAssignUnassigned(c.UserContext(), request.CN)
		if err != nil {
			return sendError(c, err)
		}

		return c.JSON(fiber.Map{
			"updated": count,
		})
	})
}
