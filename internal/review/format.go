// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tumorboard/internal/scoring"
	"github.com/pdiddy/tumorboard/pkg/types"
)

// FormatTable writes the ranked articles as a human-readable table. Events
// the upstream analysis matched to the patient's own events are emphasized
// with ** markers; that flag is the only place patient matching becomes
// visible.
func FormatTable(session *types.ReviewSession, w io.Writer) {
	if len(session.Articles) == 0 {
		fmt.Fprintln(w, "No articles scored.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-10s  %-6s  %-6s  %-50s  %s\n",
		"Rank", "PMID", "Year", "Points", "Title", "Actionable Events")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, rec := range session.Articles {
		title := rec.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-10s  %-6s  %-6d  %-50s  %s\n",
			i+1, rec.PMID, rec.Year, rec.OverallPoints, title, formatEvents(rec.ActionableEvents))
	}

	fmt.Fprintf(w, "\n%d articles", len(session.Articles))
	if len(session.Failures) > 0 {
		fmt.Fprintf(w, " (%d failed)", len(session.Failures))
	}
	fmt.Fprintln(w)

	for _, rec := range session.Articles {
		if bd := scoring.FormatBreakdown(rec.PointBreakdown); bd != "" {
			fmt.Fprintf(w, "  %d pts  %s\n", rec.OverallPoints, bd)
		}
	}
}

// FormatJSON writes the session as indented JSON.
func FormatJSON(session *types.ReviewSession, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(session)
}

// FormatYAML writes the session as a YAML document, the export format for
// sharing a review outside the tool.
func FormatYAML(session *types.ReviewSession, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(session)
}

// formatEvents joins event descriptions, bolding the ones that matched the
// patient context.
func formatEvents(events []types.ActionableEvent) string {
	var parts []string
	for _, ev := range events {
		if ev.MatchesQuery {
			parts = append(parts, "**"+ev.Event+"**")
		} else {
			parts = append(parts, ev.Event)
		}
	}
	return strings.Join(parts, ", ")
}
