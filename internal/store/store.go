// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists review sessions and their ranked articles in a
// local SQLite database with full-text search over article content.
// Implements: prd004-history (R1-R4);
//
//	docs/ARCHITECTURE § Review History.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/tumorboard/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "tumorboard.db"
)

// Store manages the review history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at
// reviewsDir/index/tumorboard.db, creating the schema if needed.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.ReviewsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reviews (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			disease TEXT,
			actionable_events TEXT,
			case_notes TEXT,
			failures TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			review_id TEXT NOT NULL REFERENCES reviews(id),
			rank INTEGER NOT NULL,
			pmid TEXT,
			title TEXT NOT NULL,
			overall_points INTEGER NOT NULL,
			full_article_text TEXT,
			record TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_review_id ON articles(review_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(title, full_article_text, content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, title, full_article_text)
				VALUES (new.rowid, new.title, new.full_article_text);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, full_article_text)
				VALUES('delete', old.rowid, old.title, old.full_article_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveSession writes one completed session and its ranked articles in a
// single transaction. Saving an existing session ID replaces it.
func (s *Store) SaveSession(ctx context.Context, session *types.ReviewSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE review_id = ?`, session.ID); err != nil {
		return fmt.Errorf("deleting old articles: %w", err)
	}

	eventsJSON, _ := json.Marshal(session.ActionableEvents)
	failuresJSON, _ := json.Marshal(session.Failures)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reviews (id, created_at, disease, actionable_events, case_notes, failures)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			created_at=excluded.created_at, disease=excluded.disease,
			actionable_events=excluded.actionable_events,
			case_notes=excluded.case_notes, failures=excluded.failures`,
		session.ID, session.CreatedAt.UTC().Format(time.RFC3339Nano),
		session.Disease, string(eventsJSON), session.CaseNotes, string(failuresJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting review: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles (review_id, rank, pmid, title, overall_points, full_article_text, record)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range session.Articles {
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling article %q: %w", rec.Title, err)
		}
		_, err = stmt.ExecContext(ctx,
			session.ID, i+1, rec.PMID, rec.Title, rec.OverallPoints,
			rec.FullArticleText, string(recordJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting article %q: %w", rec.Title, err)
		}
	}

	return tx.Commit()
}

// Session loads one session with its articles back in rank order.
func (s *Store) Session(ctx context.Context, id string) (*types.ReviewSession, error) {
	var (
		session      types.ReviewSession
		createdAt    string
		eventsJSON   sql.NullString
		failuresJSON sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, disease, actionable_events, case_notes, failures
		 FROM reviews WHERE id = ?`, id,
	).Scan(&session.ID, &createdAt, &session.Disease, &eventsJSON, &session.CaseNotes, &failuresJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("review %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading review: %w", err)
	}

	session.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if eventsJSON.Valid {
		json.Unmarshal([]byte(eventsJSON.String), &session.ActionableEvents)
	}
	if failuresJSON.Valid {
		json.Unmarshal([]byte(failuresJSON.String), &session.Failures)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM articles WHERE review_id = ? ORDER BY rank`, id)
	if err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		var rec types.ArticleRecord
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return nil, fmt.Errorf("parsing stored article: %w", err)
		}
		session.Articles = append(session.Articles, rec)
	}
	return &session, rows.Err()
}
