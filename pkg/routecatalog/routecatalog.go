package routecatalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railline/pkg/database"
	"github.com/travigo/railline/pkg/network"
	"github.com/travigo/railline/pkg/stations"
	"github.com/travigo/railline/pkg/util"
	"gorm.io/gorm"
)

// DefaultSchedule is the cyclic timetable seeded into an empty catalog
var DefaultSchedule = []network.Route{
	{FromStationID: 1, ToStationID: 2, DepartureTime: network.NewClockTime(8, 0, 0), ArrivalTime: network.NewClockTime(9, 0, 0)},
	{FromStationID: 2, ToStationID: 3, DepartureTime: network.NewClockTime(9, 30, 0), ArrivalTime: network.NewClockTime(10, 30, 0)},
	{FromStationID: 3, ToStationID: 4, DepartureTime: network.NewClockTime(11, 0, 0), ArrivalTime: network.NewClockTime(12, 0, 0)},
	{FromStationID: 4, ToStationID: 5, DepartureTime: network.NewClockTime(12, 30, 0), ArrivalTime: network.NewClockTime(13, 30, 0)},
	{FromStationID: 5, ToStationID: 1, DepartureTime: network.NewClockTime(14, 0, 0), ArrivalTime: network.NewClockTime(15, 0, 0)},
}

const destinationsQuery = `
SELECT s.id AS station_id,
       s.name AS name,
       COUNT(r.id) AS route_count,
       ABS(s.station_order - ?) AS distance
FROM stations s
LEFT JOIN routes r ON r.to_station_id = s.id AND r.from_station_id = ?
WHERE s.id <> ?
GROUP BY s.id, s.name, s.station_order
ORDER BY s.station_order, s.id`

// Catalog holds the scheduled directed services between stations
type Catalog struct {
	Session *database.Session
}

func NewCatalog(session *database.Session) *Catalog {
	return &Catalog{Session: session}
}

// FindRoute returns the earliest departing route for the exact pair
func (c *Catalog) FindRoute(ctx context.Context, fromID uint, toID uint) (network.Route, error) {
	db, err := c.Session.DB(ctx)
	if err != nil {
		return network.Route{}, err
	}

	var route network.Route
	err = db.Where("from_station_id = ? AND to_station_id = ?", fromID, toID).
		Order("departure_time").
		Order("id").
		First(&route).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return network.Route{}, fmt.Errorf("%d -> %d: %w", fromID, toID, network.ErrNoRouteAvailable)
	} else if err != nil {
		return network.Route{}, network.StoreError(network.ErrStore, "finding route", err)
	}

	return route, nil
}

// NextDepartureTo returns the earliest departing route arriving at toID from any station
func (c *Catalog) NextDepartureTo(ctx context.Context, toID uint) (network.Route, error) {
	db, err := c.Session.DB(ctx)
	if err != nil {
		return network.Route{}, err
	}

	var route network.Route
	err = db.Where("to_station_id = ?", toID).Order("departure_time").Order("id").First(&route).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return network.Route{}, fmt.Errorf("to %d: %w", toID, network.ErrNoRouteAvailable)
	} else if err != nil {
		return network.Route{}, network.StoreError(network.ErrStore, "finding next departure", err)
	}

	return route, nil
}

// ListDestinationsFrom lists every other station with its direct route count and distance from fromID
func (c *Catalog) ListDestinationsFrom(ctx context.Context, fromID uint) ([]network.Destination, error) {
	db, err := c.Session.DB(ctx)
	if err != nil {
		return nil, err
	}

	from, err := stations.FindStation(db, fromID)
	if err != nil {
		return nil, err
	}

	destinations := []network.Destination{}
	if err := db.Raw(destinationsQuery, from.Order, fromID, fromID).Scan(&destinations).Error; err != nil {
		return nil, network.StoreError(network.ErrStore, "listing destinations", err)
	}

	return destinations, nil
}

// StationInfo summarises the direct services leaving a station
func (c *Catalog) StationInfo(ctx context.Context, id uint) (network.StationInfo, error) {
	db, err := c.Session.DB(ctx)
	if err != nil {
		return network.StationInfo{}, err
	}

	station, err := stations.FindStation(db, id)
	if err != nil {
		return network.StationInfo{}, err
	}

	var routeCount int64
	if err := db.Model(&network.Route{}).Where("from_station_id = ?", id).Count(&routeCount).Error; err != nil {
		return network.StationInfo{}, network.StoreError(network.ErrStore, "counting routes", err)
	}

	var names []string
	err = db.Table("routes r").
		Joins("JOIN stations s ON r.to_station_id = s.id").
		Where("r.from_station_id = ?", id).
		Order("r.departure_time").
		Pluck("s.name", &names).Error
	if err != nil {
		return network.StationInfo{}, network.StoreError(network.ErrStore, "listing connected stations", err)
	}

	connected := util.RemoveDuplicateStrings(names, nil)
	if connected == nil {
		connected = []string{}
	}

	return network.StationInfo{
		Station:           station,
		RouteCount:        int(routeCount),
		ConnectedStations: connected,
	}, nil
}

// AddRoute schedules a new service between two existing stations
func (c *Catalog) AddRoute(ctx context.Context, route network.Route) (uint, error) {
	if route.FromStationID == route.ToStationID {
		return 0, fmt.Errorf("route must connect two different stations: %w", network.ErrValidation)
	}

	db, err := c.Session.DB(ctx)
	if err != nil {
		return 0, err
	}

	route.ID = 0
	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := stations.FindStation(tx, route.FromStationID); err != nil {
			return err
		}
		if _, err := stations.FindStation(tx, route.ToStationID); err != nil {
			return err
		}

		if err := tx.Create(&route).Error; err != nil {
			return network.StoreError(network.ErrStore, "adding route", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().
		Uint("id", route.ID).
		Uint("from", route.FromStationID).
		Uint("to", route.ToStationID).
		Str("departure", route.DepartureTime.String()).
		Msg("Added route")

	return route.ID, nil
}

// EnsureProvisioned creates the routes table and seeds DefaultSchedule when it is empty
func (c *Catalog) EnsureProvisioned(ctx context.Context) error {
	db, err := c.Session.DB(ctx)
	if err != nil {
		return err
	}

	if err := database.EnsureTable(db, &network.Route{}); err != nil {
		return network.StoreError(network.ErrStore, "creating routes table", err)
	}

	count, err := database.CountRows(db, &network.Route{})
	if err != nil {
		return network.StoreError(network.ErrStore, "counting routes", err)
	}
	if count > 0 {
		return nil
	}

	schedule := make([]network.Route, len(DefaultSchedule))
	copy(schedule, DefaultSchedule)

	if err := db.Create(&schedule).Error; err != nil {
		return network.StoreError(network.ErrStore, "seeding default routes", err)
	}

	log.Info().Int("routes", len(schedule)).Msg("Seeded default route schedule")

	return nil
}
