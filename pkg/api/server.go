package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/travigo/railline/pkg/api/routes"
	"github.com/travigo/railline/pkg/engine"
)

func NewApp(e *engine.Engine) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.StationsRouter(group.Group("/stations"), e.Stations, e.Routes, e.Carriers)
	routes.RoutesRouter(group.Group("/routes"), e.Routes)
	routes.QuotesRouter(group.Group("/quotes"), e.Booking)
	routes.BookingsRouter(group.Group("/bookings"), e.Booking)
	routes.CarriersRouter(group.Group("/carriers"), e.Carriers)

	return webApp
}

func SetupServer(e *engine.Engine, listen string) error {
	return NewApp(e).Listen(listen)
}
