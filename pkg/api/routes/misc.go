package routes

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/railline/pkg/network"
)

func getIDParam(c *fiber.Ctx, name string) (uint, error) {
	return parseID(name, c.Params(name))
}

func getIDQuery(c *fiber.Ctx, name string) (uint, error) {
	value := c.Query(name)
	if value == "" {
		return 0, fmt.Errorf("parameter %s is required: %w", name, network.ErrValidation)
	}

	return parseID(name, value)
}

func parseID(name string, value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("parameter %s should be a positive integer: %w", name, network.ErrValidation)
	}

	return uint(id), nil
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, network.ErrConnection):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, network.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, network.ErrDuplicateCN),
		errors.Is(err, network.ErrNoEligibleStation),
		errors.Is(err, network.ErrStationInUse):
		return fiber.StatusConflict
	case errors.Is(err, network.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusRequestTimeout
	case errors.Is(err, network.ErrStore):
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

func sendError(c *fiber.Ctx, err error) error {
	c.Status(errorStatus(err))
	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}
