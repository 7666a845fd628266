// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review runs the full case-notes-to-ranked-articles pipeline:
// note understanding, article analysis, scoring, ranking, and persistence.
// Implements: prd001-scoring (R5), prd002-notes (R1), prd003-analysis (R4),
//
//	prd004-history (R1); docs/ARCHITECTURE § Review Pipeline.
package review

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/tumorboard/internal/notes"
	"github.com/pdiddy/tumorboard/internal/retrieval"
	"github.com/pdiddy/tumorboard/internal/scoring"
	"github.com/pdiddy/tumorboard/pkg/types"
)

// Analyzer abstracts the analysis stream client so tests can supply a mock.
type Analyzer interface {
	Analyze(ctx context.Context, req retrieval.Request, fn func(retrieval.Event) error) error
}

// Saver persists completed sessions. The store implements it; tests and
// store-less runs pass nil.
type Saver interface {
	SaveSession(ctx context.Context, session *types.ReviewSession) error
}

// Options tunes one pipeline run.
type Options struct {
	// Instructions is the actionable-event extraction prompt. Empty selects
	// the default prompt.
	Instructions string

	// Methodology is the scoring methodology document forwarded to the
	// analysis service. The client-side rubric is authoritative regardless.
	Methodology string

	// SkipDisease runs the basic rubric: no disease extraction, no
	// disease-aware bonuses.
	SkipDisease bool
}

// Pipeline wires the collaborators together.
type Pipeline struct {
	Notes    notes.Backend
	Analyzer Analyzer
	Store    Saver // optional
	Log      *logrus.Logger
}

// Run executes the pipeline for one set of case notes, writing progress
// lines to w. Scoring failures and stream error events are recorded
// per-article and never abort the batch. When the stream itself dies
// mid-batch, Run returns the partial session (already-scored articles,
// correctly ranked) together with the stream error.
func (p *Pipeline) Run(ctx context.Context, caseNotes string, opts Options, w io.Writer) (*types.ReviewSession, error) {
	if strings.TrimSpace(caseNotes) == "" {
		return nil, fmt.Errorf("case notes are empty")
	}

	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	session := &types.ReviewSession{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		CaseNotes: caseNotes,
	}

	if !opts.SkipDisease {
		disease, err := p.Notes.ExtractDisease(ctx, caseNotes)
		if err != nil {
			return nil, fmt.Errorf("extracting disease: %w", err)
		}
		session.Disease = disease
		fmt.Fprintf(w, "disease: %s\n", disease)
	}

	events, err := p.Notes.ExtractEvents(ctx, caseNotes, opts.Instructions)
	if err != nil {
		return nil, fmt.Errorf("extracting actionable events: %w", err)
	}
	session.ActionableEvents = events
	fmt.Fprintf(w, "actionable events: %s\n", strings.Join(events, ", "))

	patient := session.Context()
	log.WithFields(logrus.Fields{
		"session": session.ID,
		"disease": session.Disease,
		"events":  len(events),
		"variant": string(scoring.VariantFor(patient)),
	}).Info("starting article analysis")

	var scored []types.ArticleRecord
	streamErr := p.Analyzer.Analyze(ctx, retrieval.Request{
		EventsText:  strings.Join(events, "\n"),
		Methodology: opts.Methodology,
		Disease:     session.Disease,
	}, func(ev retrieval.Event) error {
		switch {
		case ev.Progress != nil:
			if !ev.Progress.Complete() {
				fmt.Fprintf(w, "processing %d of %d articles\n",
					ev.Progress.CurrentArticle, ev.Progress.TotalArticles)
			}

		case ev.Article != nil:
			rec, err := scoring.Score(*ev.Article, patient)
			if err != nil {
				session.Failures = append(session.Failures, types.ArticleFailure{
					ArticleNumber: ev.ArticleNumber,
					Message:       err.Error(),
				})
				fmt.Fprintf(w, "skipped article %d: %v\n", ev.ArticleNumber, err)
				return nil
			}
			scored = append(scored, rec)
			fmt.Fprintf(w, "scored %q: %d points\n", rec.Title, rec.OverallPoints)

		case ev.Failure != nil:
			session.Failures = append(session.Failures, *ev.Failure)
			fmt.Fprintf(w, "article failed: %s\n", ev.Failure.Message)
		}
		return nil
	})

	// Rank whatever arrived, even when the stream died early: partial
	// results stay visible and correctly ordered.
	session.Articles = scoring.Rank(scored)

	if streamErr != nil {
		log.WithError(streamErr).WithField("session", session.ID).
			Warn("analysis stream ended early, keeping partial results")
	}

	if p.Store != nil && len(session.Articles) > 0 {
		if err := p.Store.SaveSession(ctx, session); err != nil {
			log.WithError(err).Warn("could not persist review session")
		}
	}

	log.WithFields(logrus.Fields{
		"session":  session.ID,
		"articles": len(session.Articles),
		"failures": len(session.Failures),
	}).Info("review complete")

	return session, streamErr
}
