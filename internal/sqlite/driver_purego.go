//go:build !cgo_sqlite

package sqlite

import (
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

const (
	driverName = "sqlite"
	driverType = "purego"
)

func dsn(path string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		return path
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())
}
