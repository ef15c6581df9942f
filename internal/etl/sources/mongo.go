package sources

import (
	"context"
	"fmt"

	"orderexport/internal/dbclient"
	"orderexport/internal/etl"
	"orderexport/internal/value"
)

// ── MongoDB Source ─────────────────────────────────────────
// Reads persisted orders, newest first. Each stored document wraps the
// upstream payload in a "raw" field; that payload is the record.

const (
	defaultOrderCollection = "orders"
	defaultOrderSortField  = "createdAt"
	defaultOrderLimit      = 50
	defaultRawField        = "raw"
)

type mongoSource struct{}

func init() { etl.RegisterSource(&mongoSource{}) }

func (s *mongoSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "mongo",
		Label: "MongoDB Orders",
		ConfigFields: []etl.ConfigField{
			{Key: "host", Label: "Host or URI", Type: "string", Required: true, Help: "Hostname, or a full mongodb:// / mongodb+srv:// URI"},
			{Key: "port", Label: "Port", Type: "number", Default: "27017"},
			{Key: "database", Label: "Database", Type: "string"},
			{Key: "username", Label: "Username", Type: "string"},
			{Key: "passwordKey", Label: "Password Secret", Type: "password", Help: "Secret store key holding the password"},
			{Key: "collection", Label: "Collection", Type: "string", Default: defaultOrderCollection},
			{Key: "filter", Label: "Filter", Type: "textarea", Help: "Extended JSON filter, e.g. {\"shop\": \"acme\"}"},
			{Key: "sortField", Label: "Sort Field", Type: "string", Default: defaultOrderSortField, Help: "Sorted descending"},
			{Key: "limit", Label: "Limit", Type: "number", Default: "50"},
			{Key: "rawField", Label: "Payload Field", Type: "string", Default: defaultRawField, Help: "Field holding the order payload; '-' uses the whole document"},
		},
	}
}

func mongoConnection(cfg etl.SourceConfig) dbclient.Connection {
	return dbclient.Connection{
		Driver:   dbclient.DriverMongoDB,
		Host:     cfg.String("host"),
		Port:     cfg.Int("port", 0),
		Database: cfg.String("database"),
		Username: cfg.String("username"),
		Extra:    cfg.StringMap("options"),
	}
}

func mongoQuery(cfg etl.SourceConfig) dbclient.Query {
	return dbclient.Query{
		Collection: cfg.StringOr("collection", defaultOrderCollection),
		Filter:     cfg.String("filter"),
		SortField:  cfg.StringOr("sortField", defaultOrderSortField),
		Limit:      cfg.Int("limit", defaultOrderLimit),
	}
}

// payload picks the record out of a stored document.
func payload(doc *value.Mapping, rawField string) etl.Record {
	if rawField == "-" {
		return doc
	}
	if v, ok := doc.Get(rawField); ok {
		if m, ok := v.(*value.Mapping); ok {
			return m
		}
	}
	return doc
}

func (s *mongoSource) Read(ctx context.Context, cfg etl.SourceConfig) (<-chan etl.Record, <-chan error) {
	return stream(ctx, func(emit func(etl.Record) bool) error {
		conn := mongoConnection(cfg)
		if conn.Host == "" {
			return fmt.Errorf("host is required")
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

		rawField := cfg.StringOr("rawField", defaultRawField)
		return client.Each(ctx, mongoQuery(cfg), func(doc *value.Mapping) bool {
			return emit(payload(doc, rawField))
		})
	})
}
