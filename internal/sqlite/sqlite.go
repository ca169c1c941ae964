// Package sqlite selects the SQLite driver used by the rest of the module.
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite (no CGO needed)
//   - -tags cgo_sqlite with CGO_ENABLED=1: mattn/go-sqlite3
//
// Use Open instead of sql.Open so the registered driver name always matches
// the selected implementation.
package sqlite

import (
	"database/sql"
	"time"
)

// DriverName returns the registered name of the active driver.
func DriverName() string {
	return driverName
}

// DriverType identifies the implementation: "purego" or "cgo".
func DriverType() string {
	return driverType
}

// Open opens a SQLite database with the active driver. A non-zero
// busyTimeout is applied through the driver's DSN so concurrent writers
// retry instead of failing immediately with a busy error.
func Open(path string, busyTimeout time.Duration) (*sql.DB, error) {
	return sql.Open(driverName, dsn(path, busyTimeout))
}
