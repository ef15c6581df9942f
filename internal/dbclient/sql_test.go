package dbclient_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"orderexport/internal/dbclient"
	"orderexport/internal/value"
)

func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	stmts := []string{
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, name TEXT, total REAL, raw TEXT)`,
		`INSERT INTO orders (name, total, raw) VALUES ('#1', 10.5, '{"name":"#1"}')`,
		`INSERT INTO orders (name, total, raw) VALUES ('#2', 20, NULL)`,
		`INSERT INTO orders (name, total, raw) VALUES ('#3', 30, NULL)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed %q: %v", s, err)
		}
	}
	return path
}

func TestSQLConnector_Each(t *testing.T) {
	conn, err := dbclient.NewConnector(dbclient.Connection{Driver: dbclient.DriverSQLite, Host: seedSQLite(t)}, "")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	if err := conn.TestConnection(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var rows []*value.Mapping
	err = conn.Each(ctx, dbclient.Query{Statement: "SELECT name, total, raw FROM orders ORDER BY id", Limit: 2}, func(m *value.Mapping) bool {
		rows = append(rows, m)
		return true
	})
	if err != nil {
		t.Fatalf("each: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if keys := rows[0].Keys(); len(keys) != 3 || keys[0] != "name" || keys[2] != "raw" {
		t.Errorf("unexpected column order %v", keys)
	}
	if v, _ := rows[0].Get("total"); v != value.Number(10.5) {
		t.Errorf("expected 10.5, got %v", v)
	}
	if v, _ := rows[1].Get("raw"); v != (value.Null{}) {
		t.Errorf("expected null raw, got %v", v)
	}
}

func TestSQLConnector_StopEarly(t *testing.T) {
	conn, err := dbclient.NewConnector(dbclient.Connection{Driver: dbclient.DriverSQLite, Host: seedSQLite(t)}, "")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	n := 0
	err = conn.Each(context.Background(), dbclient.Query{Statement: "SELECT * FROM orders"}, func(*value.Mapping) bool {
		n++
		return false
	})
	if err != nil || n != 1 {
		t.Errorf("expected one row and no error, got %d, %v", n, err)
	}
}

func TestSQLConnector_RejectsWrites(t *testing.T) {
	conn, err := dbclient.NewConnector(dbclient.Connection{Driver: dbclient.DriverSQLite, Host: seedSQLite(t)}, "")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	err = conn.Each(context.Background(), dbclient.Query{Statement: "DELETE FROM orders"}, func(*value.Mapping) bool { return true })
	if err == nil {
		t.Fatal("expected write query to be rejected")
	}
}
