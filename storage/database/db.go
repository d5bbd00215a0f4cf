// Package database opens the PostgreSQL database, creates it on first run and migrates it.
package database

import (
	"database/sql"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/biglotteryfund/funding/core"
	appfs "github.com/biglotteryfund/funding/fs"
)

const (
	migrationsDir = "migrations"
	pingAttempts  = 30
)

// dsn builds the connection URL; admin connects with the admin credentials when they are set.
func dsn(dbName string, admin bool, conf core.DatabaseConfig) string {
	creds := url.UserPassword(conf.User, conf.Password)
	if admin && conf.AdminUser != "" {
		creds = url.UserPassword(conf.AdminUser, conf.AdminPassword)
	}

	q := url.Values{"timezone": {"utc"}, "sslmode": {"require"}}
	if conf.DisableTLS {
		q.Set("sslmode", "disable")
	}
	u := url.URL{
		Scheme:   conf.Engine,
		User:     creds,
		Host:     conf.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Connect opens the application database and waits for it to answer.
func Connect(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(conf.Database.Engine, dsn(conf.Database.Name, false, conf.Database))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping retries with a linear backoff until the database answers.
func ping(db *sql.DB) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

func exists(db *sqlx.DB, query, name string) (bool, error) {
	var found bool
	err := db.Get(&found, query, name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return found, err
}

// bootstrap creates the role and database the app connects with, when missing.
func bootstrap(admin, app *sqlx.DB, conf core.DatabaseConfig) error {
	if conf.User != "" {
		found, err := exists(admin, "SELECT true FROM pg_roles WHERE rolname = $1", conf.User)
		if err != nil {
			return errors.Wrap(err, "checking app user")
		}
		if !found {
			q := "CREATE USER " + pq.QuoteIdentifier(conf.User) + " CREATEDB ENCRYPTED PASSWORD " + pq.QuoteLiteral(conf.Password)
			if _, err = admin.Exec(q); err != nil {
				return errors.Wrap(err, "creating app user")
			}
		}
	}

	found, err := exists(app, "SELECT true FROM pg_database WHERE datname = $1", conf.Name)
	if err != nil {
		return errors.Wrap(err, "checking database")
	}
	if !found {
		// created by the app user so that it owns it
		if _, err = app.Exec("CREATE DATABASE " + pq.QuoteIdentifier(conf.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the application user and database through the maintenance database.
func CreateIfNotExist(conf *core.Config) error {
	admin, err := sqlx.Open(conf.Database.Engine, dsn("postgres", true, conf.Database))
	if err != nil {
		return errors.Wrap(err, "opening maintenance database")
	}
	defer func() { _ = admin.Close() }()
	if err = ping(admin.DB); err != nil {
		return err
	}

	app, err := sqlx.Open(conf.Database.Engine, dsn("postgres", false, conf.Database))
	if err != nil {
		return errors.Wrap(err, "opening maintenance database")
	}
	defer func() { _ = app.Close() }()

	return bootstrap(admin, app, conf.Database)
}

// Migrate runs a goose command ("up", "down", "status", ...) with the embedded migrations.
func Migrate(db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting dialect")
	}
	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "migrating database: %s", command)
	}
	return nil
}
