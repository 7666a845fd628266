// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval consumes the article analysis service's long-lived
// NDJSON response stream and hands decoded events to a caller-supplied fold.
// Implements: prd003-analysis (R1-R5);
//
//	docs/ARCHITECTURE § Article Analysis.
package retrieval

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/tumorboard/internal/httputil"
	"github.com/pdiddy/tumorboard/pkg/types"
)

// maxLineBytes bounds one stream line. Analysis payloads embed full article
// text, so lines run far past bufio's 64K default.
const maxLineBytes = 16 << 20

const defaultMaxWait = 10 * time.Minute

// Request seeds the analysis service: the newline-joined actionable events,
// the scoring methodology document, and the patient disease. Methodology and
// disease are explicit parameters of each call, not ambient configuration.
type Request struct {
	EventsText  string `json:"events_text"`
	Methodology string `json:"methodology_content,omitempty"`
	Disease     string `json:"disease,omitempty"`
}

// Client consumes analysis streams.
type Client struct {
	Config     types.RetrievalConfig
	HTTPClient *http.Client
}

// NewClient builds a Client from config. The HTTP client carries no request
// timeout: the stream is open-ended and bounded by MaxWait instead.
func NewClient(cfg types.RetrievalConfig) *Client {
	return &Client{Config: cfg, HTTPClient: &http.Client{}}
}

// Analyze opens the analysis stream and invokes fn once per decoded event,
// in arrival order. It returns when the stream completes, when fn returns an
// error, or when the context or max-wait deadline ends the stream.
//
// The upstream protocol defines no timeout, so Analyze derives a deadline
// from Config.MaxWait (default 10m): a stalled stream ends with
// context.DeadlineExceeded and everything folded so far stays valid.
// Malformed lines and error events are handed to fn as Failure events; they
// never terminate the stream.
func (c *Client) Analyze(ctx context.Context, req Request, fn func(Event) error) error {
	maxWait := c.Config.MaxWait
	if maxWait == 0 {
		maxWait = defaultMaxWait
	}
	if maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxWait)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.AnalyzeURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.Config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.Config.UserAgent)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, c.Config.MaxRetries)
	if err != nil {
		return fmt.Errorf("calling analysis service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analysis service returned %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev, done, decodeErr := decodeLine([]byte(line))
		if decodeErr != nil {
			ev = Event{Failure: &types.ArticleFailure{Message: decodeErr.Error()}}
		}

		if ev.Progress != nil || ev.Article != nil || ev.Failure != nil {
			if err := fn(ev); err != nil {
				return err
			}
		}
		if done {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		// A deadline hit mid-read surfaces through the body reader; report
		// it as the context error so callers can distinguish a stalled
		// stream from a protocol failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("reading analysis stream: %w", err)
	}

	// Stream ended without a completion event; treat as complete with
	// whatever arrived.
	return nil
}

// decodeLine decodes one stream line into an Event. done is true when the
// line is the completion metadata event.
func decodeLine(line []byte) (Event, bool, error) {
	var env streamEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Event{}, false, fmt.Errorf("malformed stream line: %v", err)
	}

	switch env.Type {
	case EventMetadata:
		var p Progress
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return Event{}, false, fmt.Errorf("malformed metadata event: %v", err)
		}
		return Event{Progress: &p}, p.Complete(), nil

	case EventArticleAnalysis:
		var a articleAnalysis
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return Event{}, false, fmt.Errorf("malformed article event: %v", err)
		}
		rec := a.Analysis.ArticleMetadata
		return Event{ArticleNumber: a.Progress.ArticleNumber, Article: &rec}, false, nil

	case EventError:
		var se streamError
		if err := json.Unmarshal(env.Data, &se); err != nil {
			return Event{}, false, fmt.Errorf("malformed error event: %v", err)
		}
		return Event{Failure: &types.ArticleFailure{Message: se.Message}}, false, nil

	default:
		// Unknown event types are skipped; the protocol is open-ended.
		return Event{}, false, nil
	}
}
