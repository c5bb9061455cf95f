package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ajolotes/ajolotes/core"
	appfs "github.com/ajolotes/ajolotes/fs"
)

// Engines
const (
	EngineSQLite   = "sqlite3"
	EnginePostgres = "postgres"

	sqliteDriver = "sqlite" // registered by modernc.org/sqlite
)

// sqliteDSN enables foreign keys and WAL (concurrent readers, one writer),
// and makes writers wait up to busyTimeout for the lock before failing.
func sqliteDSN(path string, busyTimeout time.Duration) string {
	q := make(url.Values)
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

func postgresDSN(conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Host + ":" + conf.Database.Port,
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open opens the configured database and waits for it to answer.
func Open(conf *core.Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch conf.Database.Engine {
	case EngineSQLite, "":
		if dir := filepath.Dir(conf.Database.Path); dir != "" {
			if err = os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(err, "creating database directory")
			}
		}
		db, err = sqlx.Open(sqliteDriver, sqliteDSN(conf.Database.Path, conf.Database.BusyTimeout))
		if err != nil {
			return nil, errors.Wrap(err, "opening sqlite database")
		}
		// pragmas are per connection; idle connections keep them
		db.SetConnMaxLifetime(0)
		db = sqlx.NewDb(db.DB, EngineSQLite) // "sqlite3" bindvars
	case EnginePostgres:
		db, err = sqlx.Open(EnginePostgres, postgresDSN(conf))
		if err != nil {
			return nil, errors.Wrap(err, "opening postgres database")
		}
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}

	if err = ping(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// MigrationsFS returns the embedded migrations of the given engine.
func MigrationsFS(engine string) (fs.FS, error) {
	if engine == "" {
		engine = EngineSQLite
	}
	return fs.Sub(appfs.FS, "migrations/"+engine)
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if err := RunMigrations(ctx, db, "up"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// RunMigrations runs a goose command against the embedded migrations of db's engine.
func RunMigrations(ctx context.Context, db *sqlx.DB, command string, args ...string) error {
	migrations, err := MigrationsFS(db.DriverName())
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err = goose.SetDialect(db.DriverName()); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return goose.RunContext(ctx, command, db.DB, ".", args...)
}

// IsUniqueViolation reports whether err was caused by a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// IsForeignKeyViolation reports whether err was caused by a FOREIGN KEY constraint.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
