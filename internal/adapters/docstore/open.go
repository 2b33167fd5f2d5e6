package docstore

import (
	"context"
	"fmt"
	"strings"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Drivers lists the accepted driver names.
var Drivers = []string{DriverMemory, DriverSQLite, DriverPostgres, DriverMongo}

// Open constructs the backend named by driver.
func Open(ctx context.Context, driver, dsn, database string, opts ...Option) (Store, error) {
	switch strings.ToLower(driver) {
	case "", DriverMemory:
		return NewMemory(opts...), nil
	case DriverSQLite:
		return OpenSQLite(ctx, dsn, opts...)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn, opts...)
	case DriverMongo:
		return OpenMongo(ctx, dsn, database, opts...)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
