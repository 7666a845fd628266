// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"encoding/json"

	"github.com/pdiddy/tumorboard/pkg/types"
)

// EventType discriminates the newline-delimited JSON events the analysis
// service emits on one response stream.
type EventType string

const (
	// EventMetadata carries progress counts; the first metadata event
	// announces the batch size, the last carries status "complete".
	EventMetadata EventType = "metadata"

	// EventArticleAnalysis carries one analyzed article payload.
	EventArticleAnalysis EventType = "article_analysis"

	// EventError reports a failure for one position in the stream. It does
	// not terminate the stream and must not abort scoring of later articles.
	EventError EventType = "error"
)

// streamEnvelope is the raw wire frame: a type tag plus an untyped payload.
type streamEnvelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Progress is the payload of a metadata event.
type Progress struct {
	TotalArticles  int    `json:"total_articles"`
	CurrentArticle int    `json:"current_article"`
	Status         string `json:"status"`
}

// Complete reports whether this metadata event closes the stream.
func (p Progress) Complete() bool {
	return p.Status == "complete"
}

// articleAnalysis is the payload of an article_analysis event.
type articleAnalysis struct {
	Progress struct {
		ArticleNumber int `json:"article_number"`
		TotalArticles int `json:"total_articles"`
	} `json:"progress"`
	Analysis struct {
		ArticleMetadata types.ArticleRecord `json:"article_metadata"`
	} `json:"analysis"`
}

// streamError is the payload of an error event.
type streamError struct {
	Message string `json:"message"`
}

// Event is one decoded stream event handed to the caller's fold function.
// Exactly one of Progress, Article, and Failure is set.
type Event struct {
	// ArticleNumber is the 1-based stream position for article and failure
	// events, 0 when the service did not report one.
	ArticleNumber int

	Progress *Progress
	Article  *types.ArticleRecord
	Failure  *types.ArticleFailure
}
