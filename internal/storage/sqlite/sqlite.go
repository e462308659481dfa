// Package sqlite implements the storage.Store interface on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aihorizon/eduscout/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS resources (
    topic            TEXT NOT NULL,
    rank             INTEGER NOT NULL,
    title            TEXT NOT NULL,
    url              TEXT NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    resource_type    TEXT NOT NULL,
    duration_minutes INTEGER,
    author           TEXT NOT NULL DEFAULT '',
    source_platform  TEXT NOT NULL DEFAULT '',
    keywords         TEXT NOT NULL DEFAULT '[]',
    quality_score    REAL NOT NULL,
    discovered_at    TIMESTAMP NOT NULL,
    PRIMARY KEY (topic, rank)
);

CREATE INDEX IF NOT EXISTS idx_resources_topic ON resources(topic);
`

// Store is the SQLite-backed result store
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) a result database at path. WAL mode keeps
// concurrent readers from blocking writes.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveResults replaces the stored list for a topic in one transaction
func (s *Store) SaveResults(ctx context.Context, topic string, results []types.ScoredResource) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM resources WHERE topic = ?", topic); err != nil {
		return fmt.Errorf("failed to clear previous results: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO resources (topic, rank, title, url, description, resource_type,
            duration_minutes, author, source_platform, keywords, quality_score, discovered_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range results {
		keywords, err := json.Marshal(r.Resource.Keywords)
		if err != nil {
			return fmt.Errorf("failed to encode keywords: %w", err)
		}

		var duration any
		if r.Resource.DurationMinutes != nil {
			duration = *r.Resource.DurationMinutes
		}

		if _, err := stmt.ExecContext(ctx, topic, i,
			r.Resource.Title, r.Resource.URL, r.Resource.Description,
			string(r.Resource.ResourceType), duration, r.Resource.Author,
			r.Resource.SourcePlatform, string(keywords),
			r.QualityScore, r.DiscoveredAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to insert resource %s: %w", r.Resource.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	return nil
}

// GetResults returns the ranked list stored for a topic
func (s *Store) GetResults(ctx context.Context, topic string) ([]types.ScoredResource, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT title, url, description, resource_type, duration_minutes,
               author, source_platform, keywords, quality_score, discovered_at
        FROM resources WHERE topic = ? ORDER BY rank`, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []types.ScoredResource{}
	for rows.Next() {
		var (
			r           types.ScoredResource
			rtype       string
			duration    sql.NullInt64
			keywordJSON string
			discovered  time.Time
		)
		if err := rows.Scan(&r.Resource.Title, &r.Resource.URL, &r.Resource.Description,
			&rtype, &duration, &r.Resource.Author, &r.Resource.SourcePlatform,
			&keywordJSON, &r.QualityScore, &discovered); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.Resource.ResourceType = types.ResourceType(rtype)
		if duration.Valid {
			m := int(duration.Int64)
			r.Resource.DurationMinutes = &m
		}
		if err := json.Unmarshal([]byte(keywordJSON), &r.Resource.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords: %w", err)
		}
		r.DiscoveredAt = discovered

		results = append(results, r)
	}
	return results, rows.Err()
}

// Topics lists topics with stored results
func (s *Store) Topics(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT topic FROM resources ORDER BY topic")
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
