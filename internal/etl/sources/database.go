package sources

import (
	"context"
	"fmt"
	"log/slog"

	"orderexport/internal/dbclient"
	"orderexport/internal/etl"
	"orderexport/internal/value"
)

// ── Database Source ────────────────────────────────────────
// Runs a read query against MySQL, Postgres or SQLite. With rawColumn set,
// that column holds the order payload as JSON text; otherwise the row
// itself (column → value) is the record.

type databaseSource struct{}

func init() { etl.RegisterSource(&databaseSource{}) }

func (s *databaseSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "database",
		Label: "Database Query",
		ConfigFields: []etl.ConfigField{
			{Key: "driver", Label: "Driver", Type: "select", Required: true, Options: []string{"postgres", "mysql", "sqlite"}},
			{Key: "host", Label: "Host", Type: "string", Required: true, Help: "Hostname, or the file path for sqlite"},
			{Key: "port", Label: "Port", Type: "number"},
			{Key: "database", Label: "Database", Type: "string"},
			{Key: "username", Label: "Username", Type: "string"},
			{Key: "passwordKey", Label: "Password Secret", Type: "password", Help: "Secret store key holding the password"},
			{Key: "sslMode", Label: "SSL Mode", Type: "string", Default: "disable"},
			{Key: "query", Label: "Query", Type: "textarea", Required: true, Help: "SELECT returning one row per order"},
			{Key: "rawColumn", Label: "Payload Column", Type: "string", Help: "Column holding the order as JSON text"},
			{Key: "limit", Label: "Limit", Type: "number", Default: "50"},
		},
	}
}

func databaseConnection(cfg etl.SourceConfig) (dbclient.Connection, error) {
	driver, err := dbclient.ParseDriver(cfg.String("driver"))
	if err != nil {
		return dbclient.Connection{}, err
	}
	if driver == dbclient.DriverMongoDB {
		return dbclient.Connection{}, fmt.Errorf("use the mongo source for MongoDB")
	}
	conn := dbclient.Connection{
		Driver:   driver,
		Host:     cfg.String("host"),
		Port:     cfg.Int("port", 0),
		Database: cfg.String("database"),
		Username: cfg.String("username"),
		SSLMode:  cfg.String("sslMode"),
	}
	if conn.Host == "" {
		return conn, fmt.Errorf("host is required")
	}
	return conn, nil
}

// rowRecord turns a result row into a record, decoding rawColumn when set.
// ok is false for rows whose payload is missing or not a JSON object.
func rowRecord(row *value.Mapping, rawColumn string) (etl.Record, bool) {
	if rawColumn == "" {
		return row, true
	}
	cell, _ := row.Get(rawColumn)
	text, isText := cell.(value.String)
	if !isText {
		return nil, false
	}
	doc, err := value.ParseJSON([]byte(text))
	if err != nil {
		return nil, false
	}
	m, isMap := doc.(*value.Mapping)
	return m, isMap
}

func (s *databaseSource) Read(ctx context.Context, cfg etl.SourceConfig) (<-chan etl.Record, <-chan error) {
	return stream(ctx, func(emit func(etl.Record) bool) error {
		conn, err := databaseConnection(cfg)
		if err != nil {
			return err
		}
		query := cfg.String("query")
		if query == "" {
			return fmt.Errorf("query is required")
		}
		pw, err := password(cfg)
		if err != nil {
			return err
		}
		client, err := dbclient.NewConnector(conn, pw)
		if err != nil {
			return err
		}
		defer client.Close()

		rawColumn := cfg.String("rawColumn")
		skipped := 0
		err = client.Each(ctx, dbclient.Query{Statement: query, Limit: cfg.Int("limit", defaultOrderLimit)}, func(row *value.Mapping) bool {
			rec, ok := rowRecord(row, rawColumn)
			if !ok {
				skipped++
				return true
			}
			return emit(rec)
		})
		if skipped > 0 {
			slog.Warn("etl: skipped rows without a readable payload", "column", rawColumn, "rows", skipped)
		}
		return err
	})
}
