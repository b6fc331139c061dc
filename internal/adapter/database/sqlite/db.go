package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	driverName = "sqlite3"
	MemoryPath = ":memory:"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

type Options struct {
	// Path is a file path or MemoryPath. Every in-memory store gets its own
	// uniquely named database.
	Path           string
	Logger         zerolog.Logger
	TracerProvider trace.TracerProvider
	// LogQueries logs every statement at debug level. Arguments are never logged.
	LogQueries bool
}

// Open connects, applies the embedded migrations and returns a ready store.
func Open(opts Options) (*DB, error) {
	dsn, memory := buildDSN(opts.Path)

	sqlDB, err := open(dsn, opts)
	if err != nil {
		return nil, err
	}

	if memory {
		// a single connection keeps the in-memory database alive and serializes access
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Path, err)
	}

	if err := RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	opts.Logger.Debug().
		Str("path", opts.Path).
		Bool("memory", memory).
		Msg("Database ready")

	return Wrap(sqlDB), nil
}

// Wrap builds a DB around an already opened handle. Migrations are not run.
func Wrap(sqlDB *sql.DB) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
	}
}

func open(dsn string, opts Options) (*sql.DB, error) {
	tracerProvider := opts.TracerProvider
	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}

	traced, err := otelsql.Open(driverName, dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("securetodo"),
		otelsql.WithTracerProvider(tracerProvider),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Path, err)
	}

	if !opts.LogQueries {
		return traced, nil
	}

	db := sqldblogger.OpenDriver(dsn, traced.Driver(), zerologadapter.New(opts.Logger),
		sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
		sqldblogger.WithLogArguments(false),
	)
	traced.Close()

	return db, nil
}

func buildDSN(path string) (string, bool) {
	if path == "" || path == MemoryPath {
		return fmt.Sprintf("file:memdb-%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()), true
	}

	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000", false
}

func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
