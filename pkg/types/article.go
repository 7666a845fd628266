// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the tumorboard pipeline.
// Implements: prd001-scoring (ArticleRecord, ActionableEvent, PatientContext);
//
//	prd002-notes (PatientContext);
//	prd003-analysis (stream payload shapes);
//	prd004-history (ReviewSession).
//
// See docs/ARCHITECTURE § Data Structures.
package types

import "encoding/json"

// PatientContext carries what the Note Understanding service extracted from
// one patient's case notes. Per prd002-notes R2.1.
type PatientContext struct {
	// Disease is the primary disease label, exactly as written in the case
	// notes. Empty when no disease context is available.
	Disease string `json:"disease" yaml:"disease"`

	// ActionableEvents lists extracted event phrases in extraction order.
	// Order is not priority and duplicates are kept as extracted.
	ActionableEvents []string `json:"actionable_events" yaml:"actionable_events"`
}

// ActionableEvent is one clinically significant finding reported by an
// article (mutation, fusion, marker, therapy response). MatchesQuery is
// judged upstream against the patient's events; the scoring engine only
// consumes the flag. Per prd001-scoring R1.3.
type ActionableEvent struct {
	// Event is the free-text event description (e.g. "KMT2A rearrangement").
	Event string `json:"event" yaml:"event"`

	// MatchesQuery is true when the upstream analysis judged this event to
	// correspond to one of the patient's actionable events.
	MatchesQuery bool `json:"matches_query" yaml:"matches_query"`
}

// UnmarshalJSON accepts both wire forms the analysis service emits: a bare
// string (older payloads) or an object with event and matches_query.
func (e *ActionableEvent) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = ActionableEvent{Event: s}
		return nil
	}

	type plain ActionableEvent
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = ActionableEvent(p)
	return nil
}

// ArticleRecord holds the structured metadata for one analyzed article, as
// emitted by the analysis service, plus the derived score fields owned by
// the scoring engine. Records are immutable once scored; re-scoring builds
// a fresh record. Per prd001-scoring R1.1-R1.5.
//
// Any boolean absent from the wire payload is false and any absent list is
// empty; the JSON decoder's zero values give exactly those defaults.
// Upstream-supplied overall_points and point_breakdown are ignored by the
// scoring engine, which recomputes both.
type ArticleRecord struct {
	// PMID is the PubMed identifier, or "N/A" when the source had none.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title. Required: a record without a title is
	// malformed and is skipped rather than scored.
	Title string `json:"title" yaml:"title"`

	// Link is the article URL (pubmed.ncbi.nlm.nih.gov/<PMID>/ when a PMID
	// exists).
	Link string `json:"link" yaml:"link"`

	// Year is the publication year as reported, possibly "N/A".
	Year string `json:"year" yaml:"year"`

	// CancerFocus reports whether the article relates to cancer at all.
	CancerFocus bool `json:"cancer_focus" yaml:"cancer_focus"`

	// PediatricFocus reports whether the article focuses on pediatric
	// oncology specifically.
	PediatricFocus bool `json:"pediatric_focus" yaml:"pediatric_focus"`

	// TypeOfCancer is the cancer type discussed (e.g. "Leukemia (AML)").
	TypeOfCancer string `json:"type_of_cancer" yaml:"type_of_cancer"`

	// DiseaseMatch is true when the upstream analysis judged TypeOfCancer
	// equivalent to the patient's disease.
	DiseaseMatch bool `json:"disease_match" yaml:"disease_match"`

	// PaperType is an open categorical label: "clinical trial",
	// "case report", "in vitro study", "review", "retrospective study",
	// "biological rationale", and so on. Labels outside the rubric
	// vocabulary simply score zero.
	PaperType string `json:"paper_type" yaml:"paper_type"`

	// ActionableEvents lists events reported by the article, in the order
	// the analysis reported them.
	ActionableEvents []ActionableEvent `json:"actionable_events" yaml:"actionable_events"`

	// DrugsTested reports whether any drugs were tested.
	DrugsTested bool `json:"drugs_tested" yaml:"drugs_tested"`

	// DrugResults lists specific reported results of tested drugs.
	DrugResults []string `json:"drug_results" yaml:"drug_results"`

	// TreatmentShown reports whether the article demonstrated a treatment
	// effect for the patient's context.
	TreatmentShown bool `json:"treatment_shown" yaml:"treatment_shown"`

	// Study attributes.
	CellStudies             bool `json:"cell_studies" yaml:"cell_studies"`
	MiceStudies             bool `json:"mice_studies" yaml:"mice_studies"`
	CaseReport              bool `json:"case_report" yaml:"case_report"`
	SeriesOfCaseReports     bool `json:"series_of_case_reports" yaml:"series_of_case_reports"`
	ClinicalStudy           bool `json:"clinical_study" yaml:"clinical_study"`
	ClinicalStudyOnChildren bool `json:"clinical_study_on_children" yaml:"clinical_study_on_children"`
	Novelty                 bool `json:"novelty" yaml:"novelty"`

	// JournalTitle and JournalSJR carry provenance. SJR is a journal-impact
	// score (>= 0, zero when unknown); it is displayed but does not affect
	// ranking order.
	JournalTitle string  `json:"journal_title" yaml:"journal_title"`
	JournalSJR   float64 `json:"journal_sjr" yaml:"journal_sjr"`

	// FullArticleText is the article text as supplied by the analysis.
	FullArticleText string `json:"full_article_text" yaml:"full_article_text"`

	// OverallPoints is the scored total. It is always exactly the sum of
	// PointBreakdown values: the breakdown is the ledger the total is
	// derived from, never a summary of it.
	OverallPoints int `json:"overall_points" yaml:"overall_points"`

	// PointBreakdown maps criterion name to the signed contribution that
	// criterion actually applied. Criteria that did not trigger are absent.
	PointBreakdown map[string]int `json:"point_breakdown" yaml:"point_breakdown"`
}
