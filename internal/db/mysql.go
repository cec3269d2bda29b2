package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

const defaultMySQLHost = "127.0.0.1"

var mysqlUpdateSQL = fmt.Sprintf(updateTemplate, "?", "?", "?")

// MySQLConnector opens MySQL connections through database/sql.
type MySQLConnector struct {
	dsn      string
	addr     string
	database string
}

// NewMySQLConnector creates a MySQLConnector from the connection mapping.
func NewMySQLConnector(cfg latlong.DatabaseConfig) (*MySQLConnector, error) {
	dsn, err := BuildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL settings: %v: %w", err, latlong.ErrInvalidConfig)
	}
	return &MySQLConnector{dsn: dsn, addr: parsed.Addr, database: parsed.DBName}, nil
}

// Connect opens the database and verifies it with a ping.
// The pool is capped at a single connection: statements run one at a time.
func (c *MySQLConnector) Connect(ctx context.Context) (latlong.LocationUpdater, error) {
	db, err := sql.Open("mysql", c.dsn)
	if err != nil {
		return nil, wrapConnectionError(err, latlong.DriverMySQL, c.addr, c.database)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, wrapConnectionError(err, latlong.DriverMySQL, c.addr, c.database)
	}

	return NewMySQLUpdater(db), nil
}

// BuildMySQLDSN converts the connection mapping into a go-sql-driver DSN.
//
// Recognized keys: host (default 127.0.0.1), port (default 3306), user or
// username, password or passwd, database or db, unix_socket, charset,
// collation, connection_timeout (seconds) and autocommit, which is sent to
// the server as a session variable.
func BuildMySQLDSN(cfg latlong.DatabaseConfig) (string, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.String("user", "username")
	mc.Passwd = cfg.String("password", "passwd")
	mc.DBName = cfg.String("database", "db")

	if socket := cfg.String("unix_socket"); socket != "" {
		mc.Net = "unix"
		mc.Addr = socket
	} else {
		host := cfg.String("host")
		if host == "" {
			host = defaultMySQLHost
		}
		port, err := cfg.Int("port")
		if err != nil {
			return "", err
		}
		if port == 0 {
			port = latlong.DefaultMySQLPort
		}
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}

	if collation := cfg.String("collation"); collation != "" {
		mc.Collation = collation
	}

	timeout, err := cfg.Int("connection_timeout")
	if err != nil {
		return "", err
	}
	if timeout > 0 {
		mc.Timeout = time.Duration(timeout) * time.Second
	}

	autocommit := "0"
	if cfg.Autocommit() {
		autocommit = "1"
	}
	mc.Params = map[string]string{latlong.ConfigKeyAutocommit: autocommit}

	dsn := mc.FormatDSN()
	if charset := cfg.String("charset"); charset != "" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "charset=" + url.QueryEscape(charset)
	}
	return dsn, nil
}

// MySQLUpdater executes coordinate updates over a *sql.DB.
type MySQLUpdater struct {
	db *sql.DB
}

// NewMySQLUpdater wraps an open database handle.
func NewMySQLUpdater(db *sql.DB) *MySQLUpdater {
	return &MySQLUpdater{db: db}
}

// UpdateLocation executes one UPDATE with latitude, longitude and id bound positionally.
// Decimals are sent in their exact string form.
func (u *MySQLUpdater) UpdateLocation(ctx context.Context, rec latlong.LocationRecord) error {
	_, err := u.db.ExecContext(ctx, mysqlUpdateSQL, rec.Latitude.Decimal, rec.Longitude.Decimal, rec.ID)
	return err
}

// Close closes the database handle.
func (u *MySQLUpdater) Close() error {
	return u.db.Close()
}

var (
	_ latlong.Connector       = (*MySQLConnector)(nil)
	_ latlong.LocationUpdater = (*MySQLUpdater)(nil)
)
