// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notes extracts the primary disease and actionable events from
// free-text case notes via the remote Note Understanding service.
// Implements: prd002-notes (R1-R5);
//
//	docs/ARCHITECTURE § Note Understanding.
package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/tumorboard/internal/httputil"
	"github.com/pdiddy/tumorboard/pkg/types"
)

// Backend abstracts the Note Understanding service so tests can supply a
// mock. Per the Strategy pattern (prd002-notes R5.1).
type Backend interface {
	// ExtractDisease returns the primary disease label, exactly as written
	// in the case notes.
	ExtractDisease(ctx context.Context, caseNotes string) (string, error)

	// ExtractEvents returns the actionable event phrases in extraction
	// order. instructions is the extraction prompt; it is explicit caller
	// configuration, not ambient state.
	ExtractEvents(ctx context.Context, caseNotes, instructions string) ([]string, error)
}

// HTTPBackend calls the Note Understanding cloud functions. Both endpoints
// accept {"text": ...} and respond with plain text: the disease endpoint
// with a bare label, the events endpoint with a quote-delimited list.
type HTTPBackend struct {
	Config types.NotesConfig
	Client *http.Client
}

// NewHTTPBackend builds an HTTPBackend from config, applying the configured
// request timeout.
func NewHTTPBackend(cfg types.NotesConfig) *HTTPBackend {
	client := &http.Client{}
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}
	return &HTTPBackend{Config: cfg, Client: client}
}

// ExtractDisease posts the disease prompt plus case notes and returns the
// trimmed response.
func (b *HTTPBackend) ExtractDisease(ctx context.Context, caseNotes string) (string, error) {
	prompt, err := renderDiseasePrompt(caseNotes)
	if err != nil {
		return "", fmt.Errorf("rendering disease prompt: %w", err)
	}

	body, err := b.post(ctx, b.Config.DiseaseURL, prompt)
	if err != nil {
		return "", fmt.Errorf("extracting disease: %w", err)
	}
	return strings.TrimSpace(body), nil
}

// ExtractEvents posts the instructions plus case notes and parses the
// quote-delimited response into an ordered event list. Empty instructions
// fall back to DefaultEventInstructions.
func (b *HTTPBackend) ExtractEvents(ctx context.Context, caseNotes, instructions string) ([]string, error) {
	if instructions == "" {
		instructions = DefaultEventInstructions
	}

	body, err := b.post(ctx, b.Config.EventsURL, instructions+"\n\nCase input:\n"+caseNotes)
	if err != nil {
		return nil, fmt.Errorf("extracting events: %w", err)
	}
	return ParseEventList(body), nil
}

// post sends {"text": text} to url and returns the response body as a string.
func (b *HTTPBackend) post(ctx context.Context, url, text string) (string, error) {
	reqBody, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.Config.UserAgent != "" {
		req.Header.Set("User-Agent", b.Config.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, b.Config.MaxRetries)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("note service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return string(data), nil
}

// ParseEventList parses the service's legacy quote-delimited event list
// (`"KMT2A::MLLT3 fusion" "NRAS" "CD33"`) into an ordered slice. The quoted
// form is wire format only; in memory events are always a plain list.
// Empty and whitespace-only tokens are dropped; duplicates are kept.
func ParseEventList(s string) []string {
	var events []string
	for _, tok := range strings.Split(s, `"`) {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		events = append(events, strings.TrimSpace(tok))
	}
	return events
}
