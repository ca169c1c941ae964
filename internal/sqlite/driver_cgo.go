//go:build cgo_sqlite

// CGO SQLite driver via mattn/go-sqlite3.
// Build with: CGO_ENABLED=1 go build -tags cgo_sqlite

package sqlite

import (
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	driverName = "sqlite3"
	driverType = "cgo"
)

func dsn(path string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		return path
	}
	return fmt.Sprintf("%s?_busy_timeout=%d", path, busyTimeout.Milliseconds())
}
