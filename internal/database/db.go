package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	conn *sql.DB
}

func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

func (db *DB) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS media_files (
		id TEXT PRIMARY KEY,
		original_name TEXT NOT NULL,
		stored_name TEXT NOT NULL,
		content_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		claim TEXT NOT NULL DEFAULT '',
		claim_provided INTEGER NOT NULL DEFAULT 0,
		upload_time DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		media_id TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_type TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		file_hash TEXT NOT NULL,
		authenticity_score REAL NOT NULL,
		is_manipulated INTEGER NOT NULL,
		manipulation_type TEXT NOT NULL,
		ensemble_data TEXT NOT NULL,
		semantic_mismatch INTEGER NOT NULL,
		semantic_text TEXT NOT NULL,
		reasoning TEXT NOT NULL,
		suspicious_regions TEXT NOT NULL,
		metadata TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (media_id) REFERENCES media_files(id)
	);
	`

	_, err := db.conn.Exec(query)
	return err
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}
