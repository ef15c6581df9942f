package dbclient

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// buildPostgresDSN constructs a key/value Postgres connection string.
func buildPostgresDSN(conn Connection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 5432
	}
	sslMode := conn.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		conn.Host, port, conn.Username, password, conn.Database, sslMode,
	)
}

// buildMySQLDSN constructs a go-sql-driver DSN.
func buildMySQLDSN(conn Connection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		conn.Username, password, conn.Host, port, conn.Database,
	)
	if conn.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

// buildSQLiteDSN opens the file at Host in WAL mode with a busy timeout.
func buildSQLiteDSN(conn Connection) string {
	return conn.Host + "?_journal_mode=WAL&_busy_timeout=5000"
}

// buildMongoURI accepts a full mongodb:// or mongodb+srv:// URI in Host, or
// builds one from host and port. Extra entries become query parameters.
func buildMongoURI(conn Connection, password string) string {
	if strings.HasPrefix(conn.Host, "mongodb+srv://") || strings.HasPrefix(conn.Host, "mongodb://") {
		uri := conn.Host
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", url.QueryEscape(password))
			uri = strings.ReplaceAll(uri, "<db_password>", url.QueryEscape(password))
		}
		return uri
	}

	port := conn.Port
	if port == 0 {
		port = 27017
	}
	var uri string
	if conn.Username != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%d",
			url.QueryEscape(conn.Username), url.QueryEscape(password), conn.Host, port)
	} else {
		uri = fmt.Sprintf("mongodb://%s:%d", conn.Host, port)
	}

	if len(conn.Extra) > 0 {
		keys := make([]string, 0, len(conn.Extra))
		for k := range conn.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		params := make([]string, len(keys))
		for i, k := range keys {
			params[i] = url.QueryEscape(k) + "=" + url.QueryEscape(conn.Extra[k])
		}
		uri += "/?" + strings.Join(params, "&")
	}
	return uri
}

// mongoDatabase returns conn.Database, else the path segment of the URI,
// else "test".
func mongoDatabase(conn Connection, uri string) string {
	if conn.Database != "" {
		return conn.Database
	}
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		if strings.HasPrefix(rest, prefix) {
			rest = rest[len(prefix):]
			break
		}
	}
	if at := strings.LastIndex(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	if slash := strings.Index(rest, "/"); slash != -1 {
		path := rest[slash+1:]
		if q := strings.Index(path, "?"); q != -1 {
			path = path[:q]
		}
		if path != "" {
			return path
		}
	}
	return "test"
}

// maskPassword hides password inside s for logging.
func maskPassword(s, password string) string {
	if password == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(password), "***")
	return strings.ReplaceAll(s, password, "***")
}
