package stations

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railline/pkg/database"
	"github.com/travigo/railline/pkg/network"
	"github.com/travigo/railline/pkg/util"
	"gorm.io/gorm"
)

// SampleCNs are the placeholder carrier numbers given to the first stations when the
// carrier number column is introduced
var SampleCNs = []string{"CN001", "CN002", "CN003", "CN004", "CN005"}

// SampleLine is the default line seeded into an empty directory when enabled
var SampleLine = []string{
	"Gdynia Główna",
	"Sopot",
	"Gdańsk Oliwa",
	"Gdańsk Wrzeszcz",
	"Gdańsk Główny",
	"Pruszcz Gdański",
	"Tczew",
	"Malbork",
	"Elbląg",
}

// Directory is the store-backed table of stations
type Directory struct {
	Session *database.Session

	// SeedSampleLine inserts SampleLine into an empty table during EnsureProvisioned
	SeedSampleLine bool
}

var validate = validator.New()

func NewDirectory(session *database.Session) *Directory {
	return &Directory{
		Session: session,
	}
}

// Stations iterates over all stations ordered by their line position. Every range over
// the sequence runs a fresh query. The session's only connection is held until the loop
// ends, so the loop body must not call back into the store.
func (d *Directory) Stations(ctx context.Context) iter.Seq2[network.Station, error] {
	return func(yield func(network.Station, error) bool) {
		db, err := d.Session.DB(ctx)
		if err != nil {
			yield(network.Station{}, err)
			return
		}

		rows, err := db.Model(&network.Station{}).Order("station_order").Order("id").Rows()
		if err != nil {
			yield(network.Station{}, network.StoreError(network.ErrStore, "listing stations", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var station network.Station
			if err := db.ScanRows(rows, &station); err != nil {
				yield(network.Station{}, network.StoreError(network.ErrStore, "reading station", err))
				return
			}

			if !yield(station, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(network.Station{}, network.StoreError(network.ErrStore, "listing stations", err))
		}
	}
}

func (d *Directory) ListStations(ctx context.Context) ([]network.Station, error) {
	stations := []network.Station{}

	for station, err := range d.Stations(ctx) {
		if err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}

	return stations, nil
}

func (d *Directory) GetStation(ctx context.Context, id uint) (network.Station, error) {
	db, err := d.Session.DB(ctx)
	if err != nil {
		return network.Station{}, err
	}

	return FindStation(db, id)
}

// FindStation loads one station on an existing handle, typically inside a transaction
func FindStation(db *gorm.DB, id uint) (network.Station, error) {
	var station network.Station

	err := db.First(&station, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return network.Station{}, fmt.Errorf("station %d: %w", id, network.ErrNotFound)
	} else if err != nil {
		return network.Station{}, network.StoreError(network.ErrStore, "loading station", err)
	}

	return station, nil
}

func (d *Directory) AddStation(ctx context.Context, name string, order int, cn *string) (uint, error) {
	station, err := d.newStation(name, order, cn)
	if err != nil {
		return 0, err
	}

	db, err := d.Session.DB(ctx)
	if err != nil {
		return 0, err
	}

	if err := db.Create(&station).Error; err != nil {
		return 0, network.StoreError(network.ErrStore, "adding station", err)
	}

	log.Info().Uint("id", station.ID).Str("name", station.Name).Int("order", station.Order).Msg("Added station")

	return station.ID, nil
}

func (d *Directory) UpdateStation(ctx context.Context, id uint, name string, order int, cn *string) error {
	station, err := d.newStation(name, order, cn)
	if err != nil {
		return err
	}
	station.ID = id

	db, err := d.Session.DB(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := FindStation(tx, id); err != nil {
			return err
		}

		err := tx.Model(&network.Station{ID: id}).Select("Name", "Order", "CN").Updates(&station).Error
		if err != nil {
			return network.StoreError(network.ErrStore, "updating station", err)
		}

		return nil
	})
}

// DeleteStation removes a station that no route or ticket refers to
func (d *Directory) DeleteStation(ctx context.Context, id uint) error {
	db, err := d.Session.DB(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := FindStation(tx, id); err != nil {
			return err
		}

		routes, err := countReferences(tx, &network.Route{}, id)
		if err != nil {
			return network.StoreError(network.ErrStore, "checking station routes", err)
		}

		tickets, err := countReferences(tx, &network.Ticket{}, id)
		if err != nil {
			return network.StoreError(network.ErrStore, "checking station tickets", err)
		}

		if routes > 0 || tickets > 0 {
			return fmt.Errorf("station %d has %d routes and %d tickets: %w", id, routes, tickets, network.ErrStationInUse)
		}

		if err := tx.Delete(&network.Station{}, id).Error; err != nil {
			return network.StoreError(network.ErrStore, "deleting station", err)
		}

		log.Info().Uint("id", id).Msg("Deleted station")

		return nil
	})
}

// EnsureProvisioned bootstraps the stations table and the carrier number column. It is
// safe to call any number of times.
func (d *Directory) EnsureProvisioned(ctx context.Context) error {
	db, err := d.Session.DB(ctx)
	if err != nil {
		return err
	}

	if err := database.EnsureTable(db, &network.StationBase{}); err != nil {
		return network.StoreError(network.ErrStore, "creating stations table", err)
	}

	if d.SeedSampleLine {
		if err := d.seedSampleLine(db); err != nil {
			return err
		}
	}

	added, err := database.EnsureColumn(db, &network.Station{}, "CN")
	if err != nil {
		return network.StoreError(network.ErrStore, "adding carrier number column", err)
	}
	if !added {
		return nil
	}

	var ids []uint
	if err := db.Model(&network.Station{}).Order("id").Limit(len(SampleCNs)).Pluck("id", &ids).Error; err != nil {
		return network.StoreError(network.ErrStore, "loading stations for carrier numbers", err)
	}

	for i, id := range ids {
		if err := db.Model(&network.Station{}).Where("id = ?", id).Update("cn", SampleCNs[i]).Error; err != nil {
			return network.StoreError(network.ErrStore, "seeding carrier numbers", err)
		}
	}

	log.Info().Int("stations", len(ids)).Msg("Added carrier number column and seeded sample carrier numbers")

	return nil
}

func (d *Directory) seedSampleLine(db *gorm.DB) error {
	count, err := database.CountRows(db, &network.StationBase{})
	if err != nil {
		return network.StoreError(network.ErrStore, "counting stations", err)
	}
	if count > 0 {
		return nil
	}

	line := make([]network.StationBase, 0, len(SampleLine))
	for i, name := range SampleLine {
		line = append(line, network.StationBase{Name: name, Order: i + 1})
	}

	if err := db.Create(&line).Error; err != nil {
		return network.StoreError(network.ErrStore, "seeding sample stations", err)
	}

	log.Info().Int("stations", len(line)).Msg("Seeded sample line")

	return nil
}

func countReferences(tx *gorm.DB, model any, stationID uint) (int64, error) {
	if !tx.Migrator().HasTable(model) {
		return 0, nil
	}

	var count int64
	err := tx.Model(model).Where("from_station_id = ? OR to_station_id = ?", stationID, stationID).Count(&count).Error

	return count, err
}

func (d *Directory) newStation(name string, order int, cn *string) (network.Station, error) {
	station := network.Station{
		Name:  strings.TrimSpace(name),
		Order: order,
		CN:    util.OptionalString(cn),
	}

	if err := validate.Struct(station); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return station, fmt.Errorf("station %s is invalid (%s): %w", strings.ToLower(validationErrors[0].Field()), validationErrors[0].Tag(), network.ErrValidation)
		}
		return station, fmt.Errorf("%v: %w", err, network.ErrValidation)
	}

	return station, nil
}
