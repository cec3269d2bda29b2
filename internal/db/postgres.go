package db

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/wwlatlong/pkg/latlong"
)

const (
	defaultPostgresHost    = "localhost"
	defaultApplicationName = "wwlatlong"
	postgresSocketPrefix   = ".s.PGSQL."
)

var postgresUpdateSQL = fmt.Sprintf(updateTemplate, "$1", "$2", "$3")

func configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = 1
	poolConfig.MinConns = 0
}

// PostgresConnector opens a single-connection pgx pool.
//
// Autocommit needs no session setting here: every Exec outside an explicit
// transaction commits on its own.
type PostgresConnector struct {
	connStr  string
	addr     string
	database string
}

// NewPostgresConnector creates a PostgresConnector from the connection mapping.
func NewPostgresConnector(cfg latlong.DatabaseConfig) (*PostgresConnector, error) {
	ep, err := resolvePostgresEndpoint(cfg)
	if err != nil {
		return nil, err
	}
	connStr, err := connectionString(cfg, ep)
	if err != nil {
		return nil, err
	}
	return &PostgresConnector{
		connStr:  connStr,
		addr:     ep.addr(),
		database: cfg.String("database", "db"),
	}, nil
}

// Connect establishes the pool and tests it with a ping.
func (c *PostgresConnector) Connect(ctx context.Context) (latlong.LocationUpdater, error) {
	poolConfig, err := pgxpool.ParseConfig(c.connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %v: %w", err, latlong.ErrInvalidConfig)
	}

	configurePool(poolConfig)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, latlong.DriverPostgres, c.addr, c.database)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, latlong.DriverPostgres, c.addr, c.database)
	}

	return &PostgresUpdater{conn: pool, close: pool.Close}, nil
}

// postgresEndpoint is where the server listens: a TCP host and port, or a
// socket directory plus the port that names the socket file.
type postgresEndpoint struct {
	host   string
	port   int
	socket bool
}

// resolvePostgresEndpoint reads host, port and unix_socket from the mapping.
// unix_socket may name the socket directory or the .s.PGSQL.<port> file in it;
// a host starting with "/" is a socket directory as well.
func resolvePostgresEndpoint(cfg latlong.DatabaseConfig) (postgresEndpoint, error) {
	port, err := cfg.Int("port")
	if err != nil {
		return postgresEndpoint{}, err
	}
	if port == 0 {
		port = latlong.DefaultPostgresPort
	}

	if socket := cfg.String("unix_socket"); socket != "" {
		dir := socket
		if strings.HasPrefix(path.Base(socket), postgresSocketPrefix) {
			dir = path.Dir(socket)
		}
		return postgresEndpoint{host: dir, port: port, socket: true}, nil
	}

	host := cfg.String("host")
	if host == "" {
		host = defaultPostgresHost
	}
	return postgresEndpoint{host: host, port: port, socket: strings.HasPrefix(host, "/")}, nil
}

// addr describes the endpoint in error messages.
func (e postgresEndpoint) addr() string {
	if e.socket {
		return path.Join(e.host, postgresSocketPrefix+strconv.Itoa(e.port))
	}
	return net.JoinHostPort(e.host, strconv.Itoa(e.port))
}

// BuildConnectionString converts the connection mapping into a PostgreSQL URI.
//
// Recognized keys: host (default localhost), port (default 5432), unix_socket,
// user or username, password or passwd, database or db, sslmode,
// connect_timeout or connection_timeout (seconds) and application_name.
// Socket directories travel in the host query parameter.
func BuildConnectionString(cfg latlong.DatabaseConfig) (string, error) {
	ep, err := resolvePostgresEndpoint(cfg)
	if err != nil {
		return "", err
	}
	return connectionString(cfg, ep)
}

func connectionString(cfg latlong.DatabaseConfig, ep postgresEndpoint) (string, error) {
	u := &url.URL{
		Scheme: "postgresql",
		Path:   "/" + cfg.String("database", "db"),
	}

	query := url.Values{}
	if ep.socket {
		query.Set("host", ep.host)
		query.Set("port", strconv.Itoa(ep.port))
	} else {
		u.Host = ep.addr()
	}

	if user := cfg.String("user", "username"); user != "" {
		if password := cfg.String("password", "passwd"); password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}

	if sslMode := cfg.String("sslmode"); sslMode != "" {
		query.Set("sslmode", sslMode)
	}
	if timeout := cfg.String("connect_timeout", "connection_timeout"); timeout != "" {
		if _, err := strconv.Atoi(timeout); err != nil {
			return "", fmt.Errorf("connect_timeout: %q is not an integer: %w", timeout, latlong.ErrInvalidConfig)
		}
		query.Set("connect_timeout", timeout)
	}
	appName := cfg.String("application_name")
	if appName == "" {
		appName = defaultApplicationName
	}
	query.Set("application_name", appName)

	u.RawQuery = query.Encode()
	return u.String(), nil
}

// execer is the subset of *pgxpool.Pool used for updates.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresUpdater executes coordinate updates over a pgx connection.
type PostgresUpdater struct {
	conn  execer
	close func()
}

// UpdateLocation executes one UPDATE with latitude, longitude and id bound positionally.
// Decimals are bound as text so the server parses them into numeric without
// passing through a float.
func (u *PostgresUpdater) UpdateLocation(ctx context.Context, rec latlong.LocationRecord) error {
	_, err := u.conn.Exec(ctx, postgresUpdateSQL,
		rec.Latitude.Decimal.String(),
		rec.Longitude.Decimal.String(),
		rec.ID,
	)
	return err
}

// Close returns the connection.
func (u *PostgresUpdater) Close() error {
	if u.close != nil {
		u.close()
	}
	return nil
}

var (
	_ latlong.Connector       = (*PostgresConnector)(nil)
	_ latlong.LocationUpdater = (*PostgresUpdater)(nil)
)
