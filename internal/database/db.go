package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/steeveross-eng/huntiq-telemetry/internal/config"
	"github.com/steeveross-eng/huntiq-telemetry/internal/database/alerts"
	"github.com/steeveross-eng/huntiq-telemetry/internal/database/group"
	"github.com/steeveross-eng/huntiq-telemetry/internal/database/tracking"
	"github.com/steeveross-eng/huntiq-telemetry/internal/database/trips"
	"github.com/steeveross-eng/huntiq-telemetry/internal/database/waypoints"
	_ "github.com/lib/pq"
)

//go:embed setup_postgres.sql
var setupSQL string

// Database owns the single *sql.DB connection pool and hands out
// domain-specific repositories. Domains import neither this package nor
// each other, breaking the import cycles the teacher's repository-per-
// domain layout would otherwise invite.
type Database struct {
	conn *sql.DB
}

// New opens a connection pool per cfg, verifies connectivity, and runs the
// embedded schema if the huntiq schema is not yet present.
func New(cfg config.DatabaseConfig) (*Database, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &Database{conn: db}

	needsInit, err := database.needsInitialization()
	if err != nil {
		return nil, err
	}

	if needsInit {
		log.Info().Msg("huntiq schema not found, running setup")
		if err := database.runSetup(); err != nil {
			return nil, err
		}
	}

	return database, nil
}

func (db *Database) needsInitialization() (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM information_schema.schemata WHERE schema_name = 'huntiq')`
	err := db.conn.QueryRow(query).Scan(&exists)
	return !exists, err
}

func (db *Database) runSetup() error {
	_, err := db.conn.Exec(setupSQL)
	return err
}

// Close releases the underlying connection pool.
func (db *Database) Close() error {
	return db.conn.Close()
}

// Ping verifies connectivity.
func (db *Database) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Conn returns the underlying connection pool for direct SQL access.
func (db *Database) Conn() *sql.DB {
	return db.conn
}

// Waypoints returns the waypoints repository.
func (db *Database) Waypoints() waypoints.Repository {
	return waypoints.NewPostgresRepository(db.conn)
}

// Trips returns the trips repository (trips, visits, observations, analytics).
func (db *Database) Trips() trips.Repository {
	return trips.NewPostgresRepository(db.conn)
}

// Tracking returns the tracking repository (sessions, location samples).
func (db *Database) Tracking() tracking.Repository {
	return tracking.NewPostgresRepository(db.conn)
}

// Alerts returns the alerts repository (ledger, notifications, subscriptions).
func (db *Database) Alerts() alerts.Repository {
	return alerts.NewPostgresRepository(db.conn)
}

// Group returns the group repository (position shares, chat journal).
func (db *Database) Group() group.Repository {
	return group.NewPostgresRepository(db.conn)
}

// RunInSessionTx runs fn against the tracking session repository inside a
// single transaction, so a caller composing multiple session writes (e.g.
// start_session's close-then-create) gets atomicity without reaching into
// *sql.Tx itself.
func (db *Database) RunInSessionTx(ctx context.Context, fn func(tracking.SessionRepository) error) error {
	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(tracking.NewPostgresRepository(tx).Sessions())
	})
}

// WithTransaction runs fn inside a single SQL transaction, committing on
// success and rolling back on error or panic.
func (db *Database) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}
