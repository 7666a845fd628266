// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring converts article metadata into a deterministic point total
// with a per-criterion breakdown, and orders scored batches.
// Implements: prd001-scoring (R1-R4);
//
//	docs/ARCHITECTURE § Scoring Engine.
package scoring

import (
	"errors"
	"strings"

	"github.com/pdiddy/tumorboard/pkg/types"
)

// Variant selects which rubric applies. The basic rubric scores an article
// purely on its own merits; the disease-aware rubric additionally rewards
// alignment with a specific patient's disease and actionable events.
type Variant string

const (
	VariantBasic        Variant = "basic"
	VariantDiseaseAware Variant = "disease-aware"
)

// Criterion names used as PointBreakdown keys. snake_case so the
// presentation layer can format labels by splitting on underscores.
const (
	CritPediatricFocus          = "pediatric_focus"
	CritDiseaseMatch            = "disease_match"
	CritClinicalTrial           = "clinical_trial"
	CritReview                  = "review"
	CritActionableEvents        = "actionable_events"
	CritDrugsTested             = "drugs_tested"
	CritDrugResults             = "drug_results"
	CritTreatmentShown          = "treatment_shown"
	CritCellStudies             = "cell_studies"
	CritMiceStudies             = "mice_studies"
	CritCaseReport              = "case_report"
	CritSeriesOfCaseReports     = "series_of_case_reports"
	CritClinicalStudy           = "clinical_study"
	CritClinicalStudyOnChildren = "clinical_study_on_children"
	CritNovelty                 = "novelty"
)

// CriterionOrder is the canonical display order for breakdown entries.
var CriterionOrder = []string{
	CritPediatricFocus,
	CritDiseaseMatch,
	CritClinicalTrial,
	CritReview,
	CritActionableEvents,
	CritDrugsTested,
	CritDrugResults,
	CritTreatmentShown,
	CritCellStudies,
	CritMiceStudies,
	CritCaseReport,
	CritSeriesOfCaseReports,
	CritClinicalStudy,
	CritClinicalStudyOnChildren,
	CritNovelty,
}

// ErrMissingTitle marks a malformed record: without a title there is no
// article identity to score. Callers skip and report such records instead
// of aborting the batch.
var ErrMissingTitle = errors.New("article record has no title")

// VariantFor selects the rubric for a patient context: disease-aware when a
// non-empty disease label is present, basic otherwise.
func VariantFor(ctx types.PatientContext) Variant {
	if strings.TrimSpace(ctx.Disease) != "" {
		return VariantDiseaseAware
	}
	return VariantBasic
}

// Score computes the point total and breakdown for one article under the
// rubric selected by ctx. It is pure: the input record is not mutated, and
// identical inputs always produce identical output. Any overall_points or
// point_breakdown supplied upstream is discarded and recomputed, so the
// total is always exactly the sum of the breakdown values.
//
// Missing categorical labels never fail; they simply match no rule and
// contribute nothing. The only rejection is a missing title (ErrMissingTitle).
func Score(raw types.ArticleRecord, ctx types.PatientContext) (types.ArticleRecord, error) {
	if strings.TrimSpace(raw.Title) == "" {
		return types.ArticleRecord{}, ErrMissingTitle
	}

	variant := VariantFor(ctx)

	rec := raw
	rec.OverallPoints = 0
	rec.PointBreakdown = make(map[string]int)

	add := func(criterion string, points int) {
		if points == 0 {
			return
		}
		rec.PointBreakdown[criterion] += points
		rec.OverallPoints += points
	}

	if rec.PediatricFocus {
		if variant == VariantDiseaseAware {
			add(CritPediatricFocus, 20)
		} else {
			add(CritPediatricFocus, 10)
		}
	}

	if variant == VariantDiseaseAware && rec.DiseaseMatch {
		add(CritDiseaseMatch, 50)
	}

	switch normalizeLabel(rec.PaperType) {
	case "clinical trial":
		if variant == VariantDiseaseAware {
			add(CritClinicalTrial, 40)
		} else {
			add(CritClinicalTrial, 10)
		}
	case "review":
		add(CritReview, -5)
	}

	events := 0
	for _, ev := range rec.ActionableEvents {
		if strings.TrimSpace(ev.Event) == "" {
			continue
		}
		if variant == VariantDiseaseAware {
			if ev.MatchesQuery {
				events++
			}
		} else {
			events++
		}
	}
	if variant == VariantDiseaseAware {
		add(CritActionableEvents, 15*events)
	} else {
		add(CritActionableEvents, 5*events)
	}

	if rec.DrugsTested {
		add(CritDrugsTested, 5)
	}

	// Drug outcome scoring differs between variants: the basic rubric counts
	// each reported result, the disease-aware rubric awards a flat bonus
	// when a treatment effect was shown.
	if variant == VariantDiseaseAware {
		if rec.TreatmentShown {
			add(CritTreatmentShown, 50)
		}
	} else {
		add(CritDrugResults, 5*len(rec.DrugResults))
	}

	if rec.CellStudies {
		add(CritCellStudies, 5)
	}
	if rec.MiceStudies {
		add(CritMiceStudies, 10)
	}
	if rec.CaseReport {
		add(CritCaseReport, 5)
	}
	if rec.SeriesOfCaseReports {
		add(CritSeriesOfCaseReports, 10)
	}
	if rec.ClinicalStudy {
		add(CritClinicalStudy, 15)
	}
	if rec.ClinicalStudyOnChildren {
		add(CritClinicalStudyOnChildren, 20)
	}
	if rec.Novelty {
		add(CritNovelty, 10)
	}

	return rec, nil
}

// normalizeLabel lowercases and collapses whitespace so categorical matching
// tolerates label casing drift from the upstream model ("Clinical Trial",
// "clinical trial ").
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
