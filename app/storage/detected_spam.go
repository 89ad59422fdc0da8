package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ruspam/gatekeeper/lib/spamcheck"
)

// DetectedSpam is a storage for detected spam entries
type DetectedSpam struct {
	db *DB
}

// DetectedSpamInfo represents information about a detected spam entry.
type DetectedSpamInfo struct {
	ID         int64                `db:"id"`
	Text       string               `db:"text"`
	UserID     int64                `db:"user_id"`
	UserName   string               `db:"user_name"`
	ChatID     int64                `db:"chat_id"`
	Score      float64              `db:"score"`
	Timestamp  time.Time            `db:"timestamp"`
	ChecksJSON string               `db:"checks"` // stored as JSON
	Checks     []spamcheck.Response `db:"-"`      // not stored directly
}

const detectedSpamSchemaSqlite = `CREATE TABLE IF NOT EXISTS detected_spam (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT,
    user_id INTEGER,
    user_name TEXT,
    chat_id INTEGER,
    score REAL,
    timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    checks TEXT
)`

const detectedSpamSchemaPostgres = `CREATE TABLE IF NOT EXISTS detected_spam (
    id SERIAL PRIMARY KEY,
    text TEXT,
    user_id BIGINT,
    user_name TEXT,
    chat_id BIGINT,
    score DOUBLE PRECISION,
    timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    checks TEXT
)`

// NewDetectedSpam creates a new DetectedSpam storage
func NewDetectedSpam(ctx context.Context, db *DB) (*DetectedSpam, error) {
	schema := detectedSpamSchemaSqlite
	if db.Type() == Postgres {
		schema = detectedSpamSchemaPostgres
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create detected_spam table: %w", err)
	}
	return &DetectedSpam{db: db}, nil
}

// Write adds a new detected spam entry
func (ds *DetectedSpam) Write(ctx context.Context, entry DetectedSpamInfo, checks []spamcheck.Response) error {
	checksJSON, err := json.Marshal(checks)
	if err != nil {
		return fmt.Errorf("failed to marshal checks: %w", err)
	}

	query := ds.db.Rebind(`INSERT INTO detected_spam (text, user_id, user_name, chat_id, score, timestamp, checks)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := ds.db.ExecContext(ctx, query, entry.Text, entry.UserID, entry.UserName,
		entry.ChatID, entry.Score, entry.Timestamp, checksJSON); err != nil {
		return fmt.Errorf("failed to insert detected spam entry: %w", err)
	}

	log.Printf("[INFO] detected spam entry added for user_id:%d, name:%s", entry.UserID, entry.UserName)
	return nil
}

// Read returns the latest detected spam entries, up to the limit, newest first
func (ds *DetectedSpam) Read(ctx context.Context, limit int) ([]DetectedSpamInfo, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []DetectedSpamInfo
	query := ds.db.Rebind(`SELECT id, text, user_id, user_name, chat_id, score, timestamp, checks
		FROM detected_spam ORDER BY timestamp DESC, id DESC LIMIT ?`)
	if err := ds.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get detected spam entries: %w", err)
	}

	for i, entry := range entries {
		var checks []spamcheck.Response
		if err := json.Unmarshal([]byte(entry.ChecksJSON), &checks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checks for entry %d: %w", i, err)
		}
		entries[i].Checks = checks
		entries[i].Timestamp = entry.Timestamp.Local()
	}
	return entries, nil
}

// Count returns the total number of detected spam entries
func (ds *DetectedSpam) Count(ctx context.Context) (int, error) {
	var count int
	if err := ds.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM detected_spam"); err != nil {
		return 0, fmt.Errorf("failed to count detected spam entries: %w", err)
	}
	return count, nil
}
