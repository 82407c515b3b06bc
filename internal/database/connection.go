package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. For sqlite the URL
// is a file path, defaulting to data/englishcards.db when empty.
func Connect(dbType, databaseURL string) error {
	var db *sqlx.DB
	var err error

	if dbType == "postgres" {
		db, err = sqlx.Connect("postgres", databaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %v", err)
		}
	} else {
		dbPath := databaseURL
		if dbPath == "" {
			dataDir := "data"
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %v", err)
			}
			dbPath = filepath.Join(dataDir, "englishcards.db")
		}

		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}

		if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}

		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	DB = db

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	autoincrement := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if DB.DriverName() == "postgres" {
		autoincrement = "SERIAL PRIMARY KEY"
	}

	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %v", err)
	}

	_, err = DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS phrases (
			phrase_id %s,
			english_phrase TEXT NOT NULL,
			russian_translation TEXT NOT NULL,
			category TEXT,
			level TEXT,
			example TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(english_phrase, russian_translation)
		)
	`, autoincrement))
	if err != nil {
		return fmt.Errorf("failed to create phrases table: %v", err)
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS user_phrases (
			user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			phrase_id BIGINT NOT NULL REFERENCES phrases(phrase_id) ON DELETE CASCADE,
			correct_streak INTEGER NOT NULL DEFAULT 0,
			is_learned BOOLEAN NOT NULL DEFAULT FALSE,
			added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, phrase_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_phrases table: %v", err)
	}

	// Last shown phrase per user, survives restarts so repeat avoidance
	// keeps working across deploys.
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS shown_phrases (
			user_id BIGINT PRIMARY KEY REFERENCES users(user_id) ON DELETE CASCADE,
			phrase_id BIGINT NOT NULL,
			shown_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create shown_phrases table: %v", err)
	}

	return nil
}

// rebind converts ? placeholders to the driver's placeholder style.
func rebind(query string) string {
	return DB.Rebind(query)
}
