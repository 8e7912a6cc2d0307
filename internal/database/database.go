package database

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

//go:embed migrations/*.sql
var migrations embed.FS

const memoryPath = ":memory:"

// InitDB opens the database and migrates the schema to the latest version.
// With an empty primaryURL the database is a local SQLite file at dbPath (or
// ":memory:"); otherwise it is the remote libsql database at primaryURL.
// The returned teardown closes the connection.
func InitDB(dbPath, primaryURL, authToken string) (*sql.DB, func(), error) {
	var (
		db  *sql.DB
		err error
	)
	if primaryURL == "" {
		db, err = openLocal(dbPath)
	} else {
		log.Info("Initializing Turso database", "url", primaryURL)
		db, err = sql.Open("libsql", primaryURL+"?authToken="+authToken)
		if err != nil {
			err = fmt.Errorf("failed to open db %s: %w", primaryURL, err)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("Database initialized successfully")

	teardown := func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}
	return db, teardown, nil
}

func openLocal(dbPath string) (*sql.DB, error) {
	log.Info("Initializing local-only SQLite database", "path", dbPath)
	if dbPath == memoryPath {
		db, err := sql.Open("sqlite3", memoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open in-memory database: %w", err)
		}
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		return db, nil
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database folder: %w", err)
		}
	}
	dsn := "file:" + dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(log.Default())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}
