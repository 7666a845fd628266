package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tumorboard/internal/notes"
	"github.com/pdiddy/tumorboard/internal/retrieval"
	"github.com/pdiddy/tumorboard/internal/review"
	"github.com/pdiddy/tumorboard/internal/store"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run a full literature review from case notes",
	Long: `Review runs the complete pipeline: extracts the primary disease and
actionable events from the case notes, streams article analyses from the
retrieval service, scores every article with the local rubric, ranks the
results, and saves the session to the review history.

Scores are computed locally and deterministically; any points reported by
the analysis service are discarded. With a disease in play the
disease-aware rubric applies; --skip-disease forces the basic rubric.`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().String("case-file", "", "read case notes from file instead of stdin")
	reviewCmd.Flags().String("instructions-file", "", "custom event extraction prompt file")
	reviewCmd.Flags().String("methodology-file", "", "scoring methodology document to forward to the analysis service")
	reviewCmd.Flags().Bool("skip-disease", false, "skip disease extraction and use the basic rubric")
	reviewCmd.Flags().Bool("json", false, "output the full session as JSON")
	reviewCmd.Flags().Bool("no-store", false, "do not save the session to the review history")
	reviewCmd.Flags().String("reviews-dir", "", "base directory for review history (default: reviews)")
	reviewCmd.Flags().Duration("max-wait", 0, "maximum lifetime of the analysis stream (default 10m)")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	caseNotes, err := readCaseNotes(cmd)
	if err != nil {
		return err
	}

	instructions, err := readOptionalFile(cmd, "instructions-file")
	if err != nil {
		return err
	}
	methodology, err := readOptionalFile(cmd, "methodology-file")
	if err != nil {
		return err
	}

	cfg := pipelineConfig()
	if dir, _ := cmd.Flags().GetString("reviews-dir"); dir != "" {
		cfg.Store.ReviewsDir = dir
	}
	if maxWait, _ := cmd.Flags().GetDuration("max-wait"); maxWait != 0 {
		cfg.Retrieval.MaxWait = maxWait
	}

	p := &review.Pipeline{
		Notes:    notes.NewHTTPBackend(cfg.Notes),
		Analyzer: retrieval.NewClient(cfg.Retrieval),
		Log:      newLogger(),
	}

	noStore, _ := cmd.Flags().GetBool("no-store")
	if !noStore {
		s, err := store.NewStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("opening review history: %w", err)
		}
		defer s.Close()
		p.Store = s
	}

	skipDisease, _ := cmd.Flags().GetBool("skip-disease")
	opts := review.Options{
		Instructions: instructions,
		Methodology:  methodology,
		SkipDisease:  skipDisease,
	}

	start := time.Now()
	session, runErr := p.Run(cmd.Context(), caseNotes, opts, cmd.ErrOrStderr())
	if session == nil {
		return runErr
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		if err := review.FormatJSON(session, cmd.OutOrStdout()); err != nil {
			return err
		}
	} else {
		review.FormatTable(session, cmd.OutOrStdout())
		fmt.Fprintf(cmd.ErrOrStderr(), "Review %s finished in %s\n",
			session.ID, time.Since(start).Round(time.Second))
	}

	// A dead stream still produced a usable partial ranking above; report it
	// so callers know the batch was cut short.
	if runErr != nil {
		return fmt.Errorf("analysis stream ended early: %w", runErr)
	}
	return nil
}
