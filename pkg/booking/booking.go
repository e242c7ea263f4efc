package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railline/pkg/database"
	"github.com/travigo/railline/pkg/fare"
	"github.com/travigo/railline/pkg/network"
	"github.com/travigo/railline/pkg/routecatalog"
	"github.com/travigo/railline/pkg/stations"
	"gorm.io/gorm"
)

var bookingsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "railline_bookings_total",
	Help: "Booking attempts by outcome",
}, []string{"outcome"})

func init() {
	prometheus.MustRegister(bookingsCounter)
}

type OutcomeStatus string

const (
	OutcomeBooked              OutcomeStatus = "booked"
	OutcomeDeclined            OutcomeStatus = "declined"
	OutcomeNoRouteAvailable    OutcomeStatus = "no_route_available"
	OutcomeConnectivityFailure OutcomeStatus = "connectivity_failure"
	OutcomeBookingFailed       OutcomeStatus = "booking_failed"
	OutcomeInvalidRequest      OutcomeStatus = "invalid_request"
	OutcomeCancelled           OutcomeStatus = "cancelled"
)

// Quote is what the traveller sees before confirming a booking
type Quote struct {
	From     network.Station `json:"from"`
	To       network.Station `json:"to"`
	Route    network.Route   `json:"route"`
	Distance int             `json:"distance"`
	Price    float64         `json:"price"`
}

func (q Quote) String() string {
	return fmt.Sprintf("%s -> %s, departs %s, arrives %s, %d stations, %.2f",
		q.From.Name, q.To.Name, q.Route.DepartureTime, q.Route.ArrivalTime, q.Distance, q.Price)
}

// ConfirmFunc is asked once per booking whether the quote should be bought
type ConfirmFunc func(quote Quote) bool

// Outcome is the result of QuoteAndBook. Quote is set once a route was found, Ticket only
// when booked, Err for every status other than booked and declined.
type Outcome struct {
	Status OutcomeStatus
	Quote  *Quote
	Ticket *network.Ticket
	Err    error
}

type Service struct {
	Session *database.Session
	Routes  *routecatalog.Catalog
	Now     func() time.Time
}

func NewService(session *database.Session, routes *routecatalog.Catalog) *Service {
	return &Service{
		Session: session,
		Routes:  routes,
		Now:     time.Now,
	}
}

// Quote resolves the route and fare between two stations without booking anything
func (s *Service) Quote(ctx context.Context, fromID uint, toID uint) (Quote, error) {
	db, err := s.Session.DB(ctx)
	if err != nil {
		return Quote{}, err
	}

	from, err := stations.FindStation(db, fromID)
	if err != nil {
		return Quote{}, err
	}

	to, err := stations.FindStation(db, toID)
	if err != nil {
		return Quote{}, err
	}

	route, err := s.Routes.FindRoute(ctx, fromID, toID)
	if err != nil {
		return Quote{}, err
	}

	distance := fare.Distance(from.Order, to.Order)

	return Quote{
		From:     from,
		To:       to,
		Route:    route,
		Distance: distance,
		Price:    fare.Price(distance),
	}, nil
}

// QuoteAndBook quotes the journey and, if confirm accepts the quote, records a ticket
func (s *Service) QuoteAndBook(ctx context.Context, fromID uint, toID uint, confirm ConfirmFunc) Outcome {
	outcome := s.quoteAndBook(ctx, fromID, toID, confirm)

	bookingsCounter.WithLabelValues(string(outcome.Status)).Inc()

	logger := log.With().Uint("from", fromID).Uint("to", toID).Str("outcome", string(outcome.Status)).Logger()
	switch outcome.Status {
	case OutcomeBooked:
		logger.Info().Uint("ticket", outcome.Ticket.ID).Float64("price", outcome.Ticket.Price).Msg("Booked ticket")
	case OutcomeBookingFailed, OutcomeConnectivityFailure:
		logger.Error().Err(outcome.Err).Msg("Booking failed")
	default:
		logger.Debug().Err(outcome.Err).Msg("Booking not completed")
	}

	return outcome
}

func (s *Service) quoteAndBook(ctx context.Context, fromID uint, toID uint, confirm ConfirmFunc) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Status: OutcomeCancelled, Err: err}
	}

	if !s.Session.EnsureConnected(ctx) {
		if err := ctx.Err(); err != nil {
			return Outcome{Status: OutcomeCancelled, Err: err}
		}

		_, err := s.Session.Status()
		if err == nil {
			err = network.ErrConnection
		}
		return Outcome{Status: OutcomeConnectivityFailure, Err: err}
	}

	quote, err := s.Quote(ctx, fromID, toID)
	switch {
	case errors.Is(err, network.ErrNoRouteAvailable):
		return Outcome{Status: OutcomeNoRouteAvailable, Err: err}
	case errors.Is(err, network.ErrNotFound):
		return Outcome{Status: OutcomeInvalidRequest, Err: err}
	case errors.Is(err, network.ErrConnection):
		return Outcome{Status: OutcomeConnectivityFailure, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Outcome{Status: OutcomeCancelled, Err: err}
	case err != nil:
		return Outcome{Status: OutcomeBookingFailed, Err: err}
	}

	if confirm == nil || !confirm(quote) {
		return Outcome{Status: OutcomeDeclined, Quote: &quote}
	}

	ticket, err := s.book(ctx, quote)
	if err != nil {
		status := OutcomeBookingFailed
		if errors.Is(err, network.ErrConnection) {
			status = OutcomeConnectivityFailure
		}
		return Outcome{Status: status, Quote: &quote, Err: err}
	}

	return Outcome{Status: OutcomeBooked, Quote: &quote, Ticket: &ticket}
}

func (s *Service) book(ctx context.Context, quote Quote) (network.Ticket, error) {
	db, err := s.Session.DB(ctx)
	if err != nil {
		return network.Ticket{}, err
	}

	ticket := network.Ticket{
		FromStationID: quote.From.ID,
		ToStationID:   quote.To.ID,
		Price:         quote.Price,
		BookingDate:   s.now(),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&ticket).Error
	})
	if err != nil {
		return network.Ticket{}, network.StoreError(network.ErrBookingFailed, "inserting ticket", err)
	}

	return ticket, nil
}

// Tickets lists the booking records, newest first
func (s *Service) Tickets(ctx context.Context) ([]network.Ticket, error) {
	db, err := s.Session.DB(ctx)
	if err != nil {
		return nil, err
	}

	tickets := []network.Ticket{}
	if err := db.Order("booking_date DESC").Order("id DESC").Find(&tickets).Error; err != nil {
		return nil, network.StoreError(network.ErrStore, "listing tickets", err)
	}

	return tickets, nil
}

// EnsureProvisioned creates the tickets table if it is missing
func (s *Service) EnsureProvisioned(ctx context.Context) error {
	db, err := s.Session.DB(ctx)
	if err != nil {
		return err
	}

	if err := database.EnsureTable(db, &network.Ticket{}); err != nil {
		return network.StoreError(network.ErrStore, "creating tickets table", err)
	}

	return nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}

	return s.Now()
}
