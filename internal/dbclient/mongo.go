package dbclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"orderexport/internal/value"
)

// mongoConnector implements Connector for MongoDB.
type mongoConnector struct {
	client *mongo.Client
	dbName string
}

func newMongoConnector(conn Connection, password string) (*mongoConnector, error) {
	uri := buildMongoURI(conn, password)
	dbName := mongoDatabase(conn, uri)

	slog.Debug("dbclient: connecting to mongo", "uri", maskPassword(uri, password), "database", dbName)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoConnector{client: client, dbName: dbName}, nil
}

func (m *mongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

// Each finds documents in q.Collection sorted by q.SortField descending.
func (m *mongoConnector) Each(ctx context.Context, q Query, fn func(*value.Mapping) bool) error {
	if q.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	filter, err := parseFilter(q.Filter)
	if err != nil {
		return err
	}

	opts := options.Find()
	if q.SortField != "" {
		opts.SetSort(bson.D{{Key: q.SortField, Value: -1}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	coll := m.client.Database(m.dbName).Collection(q.Collection)
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(context.Background())

	fetched := 0
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		fetched++
		rec, _ := FromBSON(doc).(*value.Mapping)
		if !fn(rec) {
			break
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor error: %w", err)
	}
	slog.Debug("dbclient: documents fetched", "collection", q.Collection, "docs", fetched)
	return nil
}

// parseFilter reads an extended JSON filter ($oid, $date, ...). Blank means
// match everything.
func parseFilter(s string) (bson.D, error) {
	if strings.TrimSpace(s) == "" {
		return bson.D{}, nil
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(s), false, &doc); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return doc, nil
}

func (m *mongoConnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
