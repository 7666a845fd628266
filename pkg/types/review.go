// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ArticleFailure records one article that could not be scored: either the
// analysis stream reported an error for that position, or the payload was
// malformed (missing title). Failures are per-article and never abort the
// rest of the batch. Per prd003-analysis R4.2.
type ArticleFailure struct {
	// ArticleNumber is the 1-based stream position, 0 when unknown.
	ArticleNumber int `json:"article_number" yaml:"article_number"`

	// Message describes what went wrong.
	Message string `json:"message" yaml:"message"`
}

// ReviewSession is one complete run of the review pipeline for a single
// set of case notes: the extracted patient context, the ranked articles,
// and any per-article failures. Per prd004-history R1.1-R1.3.
type ReviewSession struct {
	// ID is a UUID assigned when the session is created.
	ID string `json:"id" yaml:"id"`

	// CreatedAt is the UTC creation time.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// CaseNotes is the clinician-supplied free text the session started from.
	CaseNotes string `json:"case_notes" yaml:"case_notes"`

	// Disease is the extracted primary disease label.
	Disease string `json:"disease" yaml:"disease"`

	// ActionableEvents lists the extracted event phrases in extraction order.
	ActionableEvents []string `json:"actionable_events" yaml:"actionable_events"`

	// Articles holds the scored records in ranked order (highest points
	// first, arrival order preserved on ties).
	Articles []ArticleRecord `json:"articles" yaml:"articles"`

	// Failures lists articles that were reported but could not be scored.
	Failures []ArticleFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Context returns the patient context the session was scored against.
func (s *ReviewSession) Context() PatientContext {
	return PatientContext{
		Disease:          s.Disease,
		ActionableEvents: s.ActionableEvents,
	}
}
