// Package db holds the Postgres connection plumbing and the embedded schema
// migrations for the auth tables.
package db

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to the HRMS Postgres database via the pgx stdlib driver and
// verifies connectivity with a ping. Caller owns Close.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
