package dbclient

import (
	"context"
	"fmt"
	"strings"

	"orderexport/internal/value"
)

// Driver names the engine behind a Connection.
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverMongoDB  Driver = "mongodb"
	DriverSQLite   Driver = "sqlite"
)

// Connection holds what is needed to reach an order store. The password is
// kept out of it and handed to NewConnector from a secret store.
type Connection struct {
	Driver   Driver            `json:"driver"`
	Host     string            `json:"host"` // hostname, mongodb:// URI, or file path for sqlite
	Port     int               `json:"port"`
	Database string            `json:"database"`
	Username string            `json:"username"`
	SSLMode  string            `json:"sslMode"`
	Extra    map[string]string `json:"extra,omitempty"` // driver-specific options
}

// Query selects order documents. SQL drivers use Statement; MongoDB uses
// Collection, Filter (extended JSON) and SortField.
type Query struct {
	Statement  string
	Collection string
	Filter     string
	SortField  string
	Limit      int
}

// Connector streams order documents out of an external database.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// Each calls fn once per document, in query order, until fn returns
	// false or the result set is exhausted.
	Each(ctx context.Context, q Query, fn func(*value.Mapping) bool) error

	Close() error
}

// ParseDriver accepts the usual spellings of each engine.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "mariadb":
		return DriverMySQL, nil
	case "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	case "mongodb", "mongo":
		return DriverMongoDB, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", s)
	}
}

// NewConnector creates a Connector for conn.
func NewConnector(conn Connection, password string) (Connector, error) {
	switch conn.Driver {
	case DriverSQLite:
		return newSQLConnector("sqlite", buildSQLiteDSN(conn))
	case DriverMySQL:
		return newSQLConnector("mysql", buildMySQLDSN(conn, password))
	case DriverPostgres:
		return newSQLConnector("postgres", buildPostgresDSN(conn, password))
	case DriverMongoDB:
		return newMongoConnector(conn, password)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver)
	}
}
