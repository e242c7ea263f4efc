package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railline/pkg/config"
	"github.com/travigo/railline/pkg/network"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultRetryAttempts = 3
const defaultRetryDelay = 1000 * time.Millisecond

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Opener opens and verifies one connection to the store
type Opener func(ctx context.Context) (*gorm.DB, error)

// Session owns the single logical connection to the store. It is created once by the
// binary and lent by pointer to every component, which must go through DB before
// touching the store.
type Session struct {
	Opener        Opener
	RetryAttempts int
	RetryDelay    time.Duration

	// OnConnectionFailure is called once per run of failed connect cycles
	OnConnectionFailure func(err error)

	// OnStateChange receives every state transition
	OnStateChange func(state State)

	cycleMutex sync.Mutex

	mutex           sync.RWMutex
	db              *gorm.DB
	state           State
	lastErr         error
	failureReported bool
}

func NewSession(cfg config.DatabaseConfig) *Session {
	return &Session{
		Opener:        DialectorOpener(cfg.Driver, cfg.DSN),
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	}
}

func Dialector(driver string, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		mysqlDSN, err := MySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		return mysql.Open(mysqlDSN), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// MySQLDSN turns on parseTime so DATETIME columns scan into time.Time
func MySQLDSN(dsn string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	return cfg.FormatDSN(), nil
}

// DialectorOpener opens the store through gorm with the pool capped to one connection
func DialectorOpener(driver string, dsn string) Opener {
	return func(ctx context.Context) (*gorm.DB, error) {
		dialector, err := Dialector(driver, dsn)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		db, err := gorm.Open(dialector, &gorm.Config{
			Logger: NewLogger(),
		})
		if err != nil {
			return nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)

		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return nil, err
		}

		return db, nil
	}
}

// Connect runs one connect cycle: up to RetryAttempts tries spaced RetryDelay apart
func (s *Session) Connect(ctx context.Context) error {
	s.cycleMutex.Lock()
	defer s.cycleMutex.Unlock()

	if s.IsConnected() {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	_, previousErr := s.Status()
	s.setState(Connecting, nil)
	s.notify(Connecting)

	attempt := 0
	var opened *gorm.DB

	operation := func() error {
		attempt++

		db, err := s.Opener(ctx)
		if err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("Database connection attempt failed")
			return err
		}

		opened = db
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryDelay()), uint64(s.retryAttempts()-1)),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		// A cancelled caller is not a store failure
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.setState(Disconnected, previousErr)
			s.notify(Disconnected)

			return fmt.Errorf("connecting to database: %w", ctxErr)
		}

		connectionErr := fmt.Errorf("%w after %d attempts: %v", network.ErrConnection, attempt, err)
		s.failed(connectionErr)

		return connectionErr
	}

	s.mutex.Lock()
	previous := s.db
	s.db = opened
	s.state = Connected
	s.lastErr = nil
	s.failureReported = false
	s.mutex.Unlock()

	if previous != nil {
		closeDB(previous)
	}

	s.notify(Connected)
	log.Info().Int("attempt", attempt).Msg("Connected to database")

	return nil
}

// ConnectAsync runs Connect in the background and delivers its result on the channel
func (s *Session) ConnectAsync(ctx context.Context) <-chan error {
	result := make(chan error, 1)

	go func() {
		result <- s.Connect(ctx)
		close(result)
	}()

	return result
}

func (s *Session) IsConnected() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.state == Connected && s.db != nil
}

// EnsureConnected checks the current connection and, if it is gone, runs one fresh
// connect cycle. It reports false instead of failing when the store stays unreachable.
// A cancelled or expired ctx reports false and leaves the session untouched.
func (s *Session) EnsureConnected(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	if s.ping(ctx) == nil {
		return true
	}

	if ctx.Err() != nil {
		return false
	}

	s.mutex.Lock()
	lost := s.state == Connected
	if lost {
		s.state = Disconnected
	}
	s.mutex.Unlock()

	if lost {
		log.Warn().Msg("Database connection lost")
		s.notify(Disconnected)
	}

	return s.Connect(ctx) == nil
}

// DB returns the session handle bound to ctx, reconnecting first if needed
func (s *Session) DB(ctx context.Context) (*gorm.DB, error) {
	if !s.EnsureConnected(ctx) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, lastErr := s.Status()
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, network.ErrConnection
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	// Close may have run since EnsureConnected
	if s.db == nil {
		return nil, network.ErrConnection
	}

	return s.db.WithContext(ctx), nil
}

// Status returns the current state and the diagnostic of the last failed cycle
func (s *Session) Status() (State, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.state, s.lastErr
}

func (s *Session) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.state = Disconnected
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	s.db = nil
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *Session) ping(ctx context.Context) error {
	s.mutex.RLock()
	db := s.db
	state := s.state
	s.mutex.RUnlock()

	if db == nil || state != Connected {
		return network.ErrConnection
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (s *Session) setState(state State, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.state = state
	s.lastErr = err
}

func (s *Session) failed(err error) {
	s.mutex.Lock()
	s.state = Disconnected
	s.lastErr = err
	alreadyReported := s.failureReported
	s.failureReported = true
	s.mutex.Unlock()

	s.notify(Disconnected)

	if alreadyReported {
		log.Debug().Err(err).Msg("Database still unreachable")
		return
	}

	log.Error().Err(err).Msg("Failed to connect to database")

	if s.OnConnectionFailure != nil {
		s.OnConnectionFailure(err)
	}
}

func (s *Session) notify(state State) {
	if s.OnStateChange != nil {
		s.OnStateChange(state)
	}
}

func (s *Session) retryAttempts() int {
	if s.RetryAttempts < 1 {
		return defaultRetryAttempts
	}

	return s.RetryAttempts
}

func (s *Session) retryDelay() time.Duration {
	if s.RetryDelay <= 0 {
		return defaultRetryDelay
	}

	return s.RetryDelay
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
