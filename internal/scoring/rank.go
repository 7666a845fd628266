// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/tumorboard/pkg/types"
)

// Rank returns the records ordered by OverallPoints descending. The sort is
// stable: records with equal points keep their arrival order, which makes
// ranked output deterministic for a given stream. Journal SJR is displayed
// alongside results but deliberately does not participate in ordering.
func Rank(records []types.ArticleRecord) []types.ArticleRecord {
	ranked := make([]types.ArticleRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OverallPoints > ranked[j].OverallPoints
	})
	return ranked
}

// FormatBreakdown renders a breakdown as "Pediatric Focus: +20 | Review: -5"
// in canonical criterion order, matching how the points detail view labels
// contributions.
func FormatBreakdown(breakdown map[string]int) string {
	var parts []string
	for _, criterion := range CriterionOrder {
		pts, ok := breakdown[criterion]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %+d", criterionLabel(criterion), pts))
	}
	return strings.Join(parts, " | ")
}

// criterionLabel turns a snake_case criterion name into a display label
// ("clinical_study_on_children" → "Clinical Study On Children").
func criterionLabel(criterion string) string {
	words := strings.Split(criterion, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
