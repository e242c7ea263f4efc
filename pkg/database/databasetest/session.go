// Package databasetest provides store-backed sessions for tests
package databasetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/travigo/railline/pkg/database"
	"gorm.io/gorm"
)

// NewSession returns a connected session on a private in-memory SQLite database
func NewSession(t testing.TB) *database.Session {
	t.Helper()

	session := &database.Session{
		Opener:        database.DialectorOpener("sqlite", ":memory:"),
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	}

	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("connecting to in-memory database: %v", err)
	}

	t.Cleanup(func() {
		session.Close()
	})

	return session
}

// MustDB returns the gorm handle of a connected session
func MustDB(t testing.TB, session *database.Session) *gorm.DB {
	t.Helper()

	db, err := session.DB(context.Background())
	if err != nil {
		t.Fatalf("session handle: %v", err)
	}

	return db
}

// FailCreates makes every insert into table fail until the test ends
func FailCreates(t testing.TB, db *gorm.DB, table string) {
	t.Helper()

	name := "databasetest:fail_" + table
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errors.New("simulated store failure"))
		}
	})
	if err != nil {
		t.Fatalf("registering failing callback: %v", err)
	}

	t.Cleanup(func() {
		db.Callback().Create().Remove(name)
	})
}
