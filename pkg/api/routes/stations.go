package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"github.com/liip/sheriff"
	"github.com/travigo/railline/pkg/carriers"
	"github.com/travigo/railline/pkg/network"
	"github.com/travigo/railline/pkg/routecatalog"
	"github.com/travigo/railline/pkg/stations"
)

type stationRequest struct {
	Name  string  `json:"name"`
	Order int     `json:"order"`
	CN    *string `json:"cn"`
}

type carrierNumberRequest struct {
	CN string `json:"cn"`
}

type stationsHandler struct {
	directory *stations.Directory
	catalog   *routecatalog.Catalog
	registry  *carriers.Registry
}

func StationsRouter(router fiber.Router, directory *stations.Directory, catalog *routecatalog.Catalog, registry *carriers.Registry) {
	h := stationsHandler{directory: directory, catalog: catalog, registry: registry}

	router.Get("/", h.listStations)
	router.Post("/", h.createStation)
	router.Get("/:id", h.getStation)
	router.Put("/:id", h.updateStation)
	router.Delete("/:id", h.deleteStation)
	router.Get("/:id/destinations", h.getDestinations)
	router.Get("/:id/info", h.getStationInfo)
	router.Put("/:id/cn", h.setCarrierNumber)
}

func stationGroups(c *fiber.Ctx) []string {
	if c.Query("view") == "basic" {
		return []string{"basic"}
	}

	return []string{"basic", "detailed"}
}

func (h stationsHandler) listStations(c *fiber.Ctx) error {
	list, err := h.directory.ListStations(c.UserContext())
	if err != nil {
		return sendError(c, err)
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{Groups: stationGroups(c)}, list)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce Stations",
		})
	}

	return c.JSON(reduced)
}

func (h stationsHandler) getStation(c *fiber.Ctx) error {
	id, err := getIDParam(c, "id")
	if err != nil {
		return sendError(c, err)
	}

	station, err := h.directory.GetStation(c.UserContext(), id)
	if err != nil {
		return sendError(c, err)
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{Groups: stationGroups(c)}, station)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce Station",
		})
	}

	return c.JSON(reduced)
}

func parseStationRequest(c *fiber.Ctx) (network.Station, error) {
	var request stationRequest
	if err := c.BodyParser(&request); err != nil {
		return network.Station{}, fmt.Errorf("station body could not be parsed: %w", network.ErrValidation)
	}

	var station network.Station
	if err := copier.Copy(&station, &request); err != nil {
		return network.Station{}, err
	}

	return station, nil
}

func (h stationsHandler) createStation(c *fiber.Ctx) error {
	station, err := parseStationRequest(c)
	if err != nil {
		return sendError(c, err)
	}

	id, err := h.directory.AddStation(c.UserContext(), station.Name, station.Order, station.CN)
	if err != nil {
		return sendError(c, err)
	}

	created, err := h.directory.GetStation(c.UserContext(), id)
	if err != nil {
		return sendError(c, err)
	}

	c.Status(fiber.StatusCreated)
	return c.JSON(created)
}

func (h stationsHandler) updateStation(c *fiber.Ctx) error {
	id, err := getIDParam(c, "id")
	if err != nil {
		return sendError(c, err)
	}

	station, err := parseStationRequest(c)
	if err != nil {
		return sendError(c, err)
	}

	if err := h.directory.UpdateStation(c.UserContext(), id, station.Name, station.Order, station.CN); err != nil {
		return sendError(c, err)
	}

	updated, err := h.directory.GetStation(c.UserContext(), id)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(updated)
}

func (h stationsHandler) deleteStation(c *fiber.Ctx) error {
	id, err := getIDParam(c, "id")
	if err != nil {
		return sendError(c, err)
	}

	if err := h.directory.DeleteStation(c.UserContext(), id); err != nil {
		return sendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h stationsHandler) getDestinations(c *fiber.Ctx) error {
	id, err := getIDParam(c, "id")
	if err != nil {
		return sendError(c, err)
	}

	destinations, err := h.catalog.ListDestinationsFrom(c.UserContext(), id)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(destinations)
}

func (h stationsHandler) getStationInfo(c *fiber.Ctx) error {
	id, err := getIDParam(c, "id")
	if err != nil {
		return sendError(c, err)
	}

	info, err := h.catalog.StationInfo(c.UserContext(), id)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(info)
}

func (h stationsHandler) setCarrierNumber(c *fiber.Ctx) error {
	id, err := getIDParam(c, "id")
	if err != nil {
		return sendError(c, err)
	}

	var request carrierNumberRequest
	if err := c.BodyParser(&request); err != nil {
		return sendError(c, fmt.Errorf("carrier number body could not be parsed: %w", network.ErrValidation))
	}

	if err := h.registry.SetForStation(c.UserContext(), id, request.CN); err != nil {
		return sendError(c, err)
	}

	station, err := h.directory.GetStation(c.UserContext(), id)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(station)
}
