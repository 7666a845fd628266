// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdiddy/tumorboard/pkg/types"
)

// SessionSummary is one row of the session list.
type SessionSummary struct {
	ID           string    `json:"id" yaml:"id"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	Disease      string    `json:"disease" yaml:"disease"`
	ArticleCount int       `json:"article_count" yaml:"article_count"`
	TopPoints    int       `json:"top_points" yaml:"top_points"`
}

// Sessions lists stored sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.created_at, r.disease,
			count(a.rowid), coalesce(max(a.overall_points), 0)
		 FROM reviews r
		 LEFT JOIN articles a ON a.review_id = r.id
		 GROUP BY r.id
		 ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var (
			sum       SessionSummary
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &createdAt, &sum.Disease, &sum.ArticleCount, &sum.TopPoints); err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// ArticleHit is one full-text search result with its originating session.
type ArticleHit struct {
	ReviewID string              `json:"review_id" yaml:"review_id"`
	Rank     int                 `json:"rank" yaml:"rank"`
	Article  types.ArticleRecord `json:"article" yaml:"article"`
}

// SearchArticles runs an FTS5 query over stored article titles and full
// text across all sessions. maxResults of 0 uses the store default.
func (s *Store) SearchArticles(ctx context.Context, query string, maxResults int) ([]ArticleHit, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT a.review_id, a.rank, a.record
		 FROM articles_fts
		 JOIN articles a ON a.rowid = articles_fts.rowid
		 WHERE articles_fts MATCH ?
		 ORDER BY articles_fts.rank
		 LIMIT ?`, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching articles: %w", err)
	}
	defer rows.Close()

	var hits []ArticleHit
	for rows.Next() {
		var (
			hit        ArticleHit
			recordJSON sql.NullString
		)
		if err := rows.Scan(&hit.ReviewID, &hit.Rank, &recordJSON); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		if recordJSON.Valid {
			if err := json.Unmarshal([]byte(recordJSON.String), &hit.Article); err != nil {
				return nil, fmt.Errorf("parsing stored article: %w", err)
			}
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
