// Package engine wires the booking engine components around one store session
package engine

import (
	"context"

	"github.com/travigo/railline/pkg/booking"
	"github.com/travigo/railline/pkg/carriers"
	"github.com/travigo/railline/pkg/config"
	"github.com/travigo/railline/pkg/database"
	"github.com/travigo/railline/pkg/provision"
	"github.com/travigo/railline/pkg/routecatalog"
	"github.com/travigo/railline/pkg/stations"
)

type Engine struct {
	Config config.AppConfig

	Session  *database.Session
	Stations *stations.Directory
	Routes   *routecatalog.Catalog
	Booking  *booking.Service
	Carriers *carriers.Registry
}

// New builds every component on top of session. The engine owns the session from here on.
func New(cfg config.AppConfig, session *database.Session) *Engine {
	e := &Engine{}
	e.Setup(cfg, session)

	return e
}

// Setup (re)builds the components, used when configuration is only known after flag parsing
func (e *Engine) Setup(cfg config.AppConfig, session *database.Session) {
	e.Config = cfg
	e.Session = session

	e.Stations = stations.NewDirectory(session)
	e.Stations.SeedSampleLine = cfg.Provisioning.SeedSampleStations

	e.Routes = routecatalog.NewCatalog(session)
	e.Booking = booking.NewService(session, e.Routes)
	e.Carriers = carriers.NewRegistry(session)
}

// Provision bootstraps stations, routes and tickets concurrently
func (e *Engine) Provision(ctx context.Context) error {
	return provision.Run(ctx, map[string]provision.Provisioner{
		"stations": e.Stations,
		"routes":   e.Routes,
		"tickets":  e.Booking,
	})
}

func (e *Engine) Close() error {
	if e.Session == nil {
		return nil
	}

	return e.Session.Close()
}
