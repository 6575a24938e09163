// Package store is the minimal concrete stand-in for the "relational
// store" external collaborator spec.md names only by interface (§1 Out
// of scope): prepared-statement execution backing the user and weather
// command handlers from spec.md §8 scenario 1. It opens a SQLite
// database the same way the teacher's main.go opens its pairs database
// — sql.Open once at startup, schema ensured, statements prepared once
// and reused read-only for the rest of the process lifetime.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// WeatherRecord mirrors the fixed 24-byte wire record spec.md §8
// scenario 1 uses as its worked example.
type WeatherRecord struct {
	Date    uint32
	Temp    int32
	Summary string // truncated/padded to 16 bytes on the wire
}

// Store wraps a prepared-statement SQLite connection.
type Store struct {
	db            *sql.DB
	weatherByDate *sql.Stmt
	userByID      *sql.Stmt
}

// Open opens (creating if necessary) the SQLite database at path, seeds
// a demonstration row, and prepares the statements the handlers use.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	weatherByDate, err := db.Prepare(`SELECT date, temp_c, summary FROM weather WHERE date = ?`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: prepare weather query: %w", err)
	}
	userByID, err := db.Prepare(`SELECT id, display_name FROM users WHERE id = ?`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: prepare user query: %w", err)
	}

	return &Store{db: db, weatherByDate: weatherByDate, userByID: userByID}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS weather (
			date    INTEGER PRIMARY KEY,
			temp_c  INTEGER NOT NULL,
			summary TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS users (
			id           INTEGER PRIMARY KEY,
			display_name TEXT NOT NULL
		);
		INSERT OR IGNORE INTO weather (date, temp_c, summary) VALUES (20260120, 22, 'Chilly');
		INSERT OR IGNORE INTO users (id, display_name) VALUES (1, 'player-1');
	`)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Weather looks up the forecast for date (YYYYMMDD form), returning
// ok=false if no row matches.
func (s *Store) Weather(date uint32) (WeatherRecord, bool, error) {
	var rec WeatherRecord
	row := s.weatherByDate.QueryRow(date)
	if err := row.Scan(&rec.Date, &rec.Temp, &rec.Summary); err != nil {
		if err == sql.ErrNoRows {
			return WeatherRecord{}, false, nil
		}
		return WeatherRecord{}, false, fmt.Errorf("store: weather query: %w", err)
	}
	return rec, true, nil
}

// DisplayName looks up a user's display name by id.
func (s *Store) DisplayName(id uint64) (string, bool, error) {
	var gotID int64
	var name string
	row := s.userByID.QueryRow(id)
	if err := row.Scan(&gotID, &name); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("store: user query: %w", err)
	}
	return name, true, nil
}

// Close releases the prepared statements and underlying connection.
func (s *Store) Close() error {
	s.weatherByDate.Close()
	s.userByID.Close()
	return s.db.Close()
}
